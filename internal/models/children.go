package models

import "time"

// Child belongs to exactly one Family. Deleting the family deletes its
// children through the FK constraint.
type Child struct {
	ID       string `gorm:"type:uuid;primaryKey" json:"id"`
	FamilyID string `gorm:"type:uuid;not null;index" json:"family_id"`
	Name     string `gorm:"type:varchar(250);not null" json:"name"`
	Age      *int   `gorm:"" json:"age"`
	Gender   string `gorm:"type:varchar(50);" json:"gender"`
	School   string `gorm:"type:varchar(250);" json:"school"`
	Notes    string `gorm:"type:text;" json:"notes"`
	PhotoURL string `gorm:"type:varchar(500);" json:"photo_url"`

	Family *Family `gorm:"foreignKey:FamilyID;references:ID;constraint:OnDelete:CASCADE" json:"family,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Child) TableName() string {
	return "children"
}

// ChildUpdate is used for partial updates of a child.
type ChildUpdate struct {
	Name     *string `json:"name"`
	Age      *int    `json:"age"`
	Gender   *string `json:"gender"`
	School   *string `json:"school"`
	Notes    *string `json:"notes"`
	PhotoURL *string `json:"photo_url"`
}
