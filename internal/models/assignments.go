package models

import (
	"fmt"
	"time"
)

type AssignmentStatus string

const (
	AssignmentActive AssignmentStatus = "active"
	AssignmentPaused AssignmentStatus = "paused"
	AssignmentEnded  AssignmentStatus = "ended"
)

func ParseAssignmentStatus(s string) (AssignmentStatus, error) {
	switch AssignmentStatus(s) {
	case AssignmentActive, AssignmentPaused, AssignmentEnded:
		return AssignmentStatus(s), nil
	default:
		return "", fmt.Errorf("unknown assignment status: %s", s)
	}
}

// DonorFamilyAssignment is the donor↔family edge. At most one active row may
// exist per (donor_id, family_id); the partial unique index created at
// migration time is the store-level backstop for that invariant.
type DonorFamilyAssignment struct {
	ID        string           `gorm:"type:uuid;primaryKey" json:"id"`
	DonorID   string           `gorm:"type:uuid;not null;index:idx_dfa_donor" json:"donor_id"`
	FamilyID  string           `gorm:"type:uuid;not null;index:idx_dfa_family" json:"family_id"`
	Status    AssignmentStatus `gorm:"type:varchar(50);default:'active'" json:"status"`
	StartDate time.Time        `gorm:"not null" json:"start_date"`
	EndDate   *time.Time       `gorm:"" json:"end_date"`

	Donor  *Profile `gorm:"foreignKey:DonorID;references:ID;constraint:OnDelete:CASCADE" json:"donor,omitempty"`
	Family *Family  `gorm:"foreignKey:FamilyID;references:ID;constraint:OnDelete:CASCADE" json:"family,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (DonorFamilyAssignment) TableName() string {
	return "donor_family_assignments"
}

// CaseManagerFamilyAssignment is the case_manager↔family edge. It carries no
// status: presence of the row grants access, removal revokes it.
type CaseManagerFamilyAssignment struct {
	ID            string     `gorm:"type:uuid;primaryKey" json:"id"`
	CaseManagerID string     `gorm:"type:uuid;not null;index:idx_cmfa_cm" json:"case_manager_id"`
	FamilyID      string     `gorm:"type:uuid;not null;index:idx_cmfa_family" json:"family_id"`
	StartDate     time.Time  `gorm:"not null" json:"start_date"`
	EndDate       *time.Time `gorm:"" json:"end_date"`

	CaseManager *Profile `gorm:"foreignKey:CaseManagerID;references:ID;constraint:OnDelete:CASCADE" json:"case_manager,omitempty"`
	Family      *Family  `gorm:"foreignKey:FamilyID;references:ID;constraint:OnDelete:CASCADE" json:"family,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (CaseManagerFamilyAssignment) TableName() string {
	return "case_manager_family_assignments"
}
