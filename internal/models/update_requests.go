package models

import (
	"fmt"
	"time"
)

type UpdateRequestStatus string

const (
	RequestPending    UpdateRequestStatus = "pending"
	RequestInProgress UpdateRequestStatus = "in_progress"
	RequestCompleted  UpdateRequestStatus = "completed"
)

func ParseUpdateRequestStatus(s string) (UpdateRequestStatus, error) {
	switch UpdateRequestStatus(s) {
	case RequestPending, RequestInProgress, RequestCompleted:
		return UpdateRequestStatus(s), nil
	default:
		return "", fmt.Errorf("unknown update request status: %s", s)
	}
}

// UpdateRequest is a donor-submitted request for news about a family. The
// status only ever moves forward: pending → in_progress → completed.
type UpdateRequest struct {
	ID                     string              `gorm:"type:uuid;primaryKey" json:"id"`
	DonorID                string              `gorm:"type:uuid;not null;index" json:"donor_id"`
	FamilyID               string              `gorm:"type:uuid;not null;index" json:"family_id"`
	RequestText            string              `gorm:"type:text;not null" json:"request_text"`
	Status                 UpdateRequestStatus `gorm:"type:varchar(50);default:'pending'" json:"status"`
	HandledByCaseManagerID *string             `gorm:"type:uuid" json:"handled_by_case_manager_id"`
	RespondedPostID        *string             `gorm:"type:uuid" json:"responded_post_id"`

	Donor         *Profile `gorm:"foreignKey:DonorID;references:ID;constraint:OnDelete:CASCADE" json:"donor,omitempty"`
	Family        *Family  `gorm:"foreignKey:FamilyID;references:ID;constraint:OnDelete:CASCADE" json:"family,omitempty"`
	HandledBy     *Profile `gorm:"foreignKey:HandledByCaseManagerID;references:ID" json:"handled_by,omitempty"`
	RespondedPost *Post    `gorm:"foreignKey:RespondedPostID;references:ID" json:"responded_post,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (UpdateRequest) TableName() string {
	return "update_requests"
}
