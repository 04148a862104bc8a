package models

import (
	"fmt"
	"time"
)

type FamilyStatus string

const (
	FamilyActive    FamilyStatus = "active"
	FamilyInactive  FamilyStatus = "inactive"
	FamilyGraduated FamilyStatus = "graduated"
)

func ParseFamilyStatus(s string) (FamilyStatus, error) {
	switch FamilyStatus(s) {
	case FamilyActive, FamilyInactive, FamilyGraduated:
		return FamilyStatus(s), nil
	default:
		return "", fmt.Errorf("unknown family status: %s", s)
	}
}

// Family is the sponsorable unit. FamilyUserID optionally links the family to
// a portal login with role "family".
type Family struct {
	ID              string       `gorm:"type:uuid;primaryKey" json:"id"`
	Name            string       `gorm:"type:varchar(250);not null" json:"name"`
	LocationCity    string       `gorm:"type:varchar(250);" json:"location_city"`
	LocationCountry string       `gorm:"type:varchar(250);" json:"location_country"`
	Story           string       `gorm:"type:text;" json:"story"`
	BannerImageURL  string       `gorm:"type:varchar(500);" json:"banner_image_url"`
	Status          FamilyStatus `gorm:"type:varchar(50);default:'active'" json:"status"`
	FamilyUserID    *string      `gorm:"type:uuid;index" json:"family_user_id"`

	FamilyUser *Profile `gorm:"foreignKey:FamilyUserID;references:ID" json:"family_user,omitempty"`
	Children   []*Child `gorm:"foreignKey:FamilyID;references:ID;constraint:OnDelete:CASCADE" json:"children,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Family) TableName() string {
	return "families"
}

// FamilyUpdate is used for partial updates of a family.
type FamilyUpdate struct {
	Name            *string       `json:"name"`
	LocationCity    *string       `json:"location_city"`
	LocationCountry *string       `json:"location_country"`
	Story           *string       `json:"story"`
	BannerImageURL  *string       `json:"banner_image_url"`
	Status          *FamilyStatus `json:"status"`
	FamilyUserID    *string       `json:"family_user_id"`
}
