package models

import (
	"time"

	"gorm.io/datatypes"
)

type Profile struct {
	ID        string `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string `gorm:"size:250;not null;unique" json:"email"`
	Name      string `gorm:"type:varchar(250);not null" json:"name"`
	Role      Role   `gorm:"type:varchar(50);not null" json:"role"`
	AvatarURL string `gorm:"type:varchar(500);" json:"avatar_url"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}

// ProfileUpdate is used for partial updates of a profile. Role is deliberately
// absent: roles are immutable after creation.
type ProfileUpdate struct {
	Name      *string `json:"name"`
	AvatarURL *string `json:"avatar_url"`
}

// DonorProfile is the 1:1 donor extension of a Profile.
type DonorProfile struct {
	ID                       string         `gorm:"type:uuid;primaryKey" json:"id"`
	UserID                   string         `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	PreferredName            string         `gorm:"type:varchar(250);" json:"preferred_name"`
	Bio                      string         `gorm:"type:text;" json:"bio"`
	CommunicationPreferences datatypes.JSON `gorm:"type:jsonb" json:"communication_preferences"`

	Profile *Profile `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"profile,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (DonorProfile) TableName() string {
	return "donor_profiles"
}

// CaseManagerProfile is the 1:1 case-manager extension of a Profile.
type CaseManagerProfile struct {
	ID     string `gorm:"type:uuid;primaryKey" json:"id"`
	UserID string `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Title  string `gorm:"type:varchar(250);" json:"title"`
	Region string `gorm:"type:varchar(250);" json:"region"`
	Phone  string `gorm:"type:varchar(50);" json:"phone"`

	Profile *Profile `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"profile,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (CaseManagerProfile) TableName() string {
	return "case_manager_profiles"
}

// RoleData carries the role-specific fields supplied at provisioning time.
// Only the fields matching the new user's role are read.
type RoleData struct {
	PreferredName string `json:"preferred_name"`
	Bio           string `json:"bio"`
	Title         string `json:"title"`
	Region        string `json:"region"`
	Phone         string `json:"phone"`
}
