package models

import (
	"fmt"
	"time"
)

type PostVisibility string

const (
	PostVisible PostVisibility = "visible"
	PostHidden  PostVisibility = "hidden"
)

func ParsePostVisibility(s string) (PostVisibility, error) {
	switch PostVisibility(s) {
	case PostVisible, PostHidden:
		return PostVisibility(s), nil
	default:
		return "", fmt.Errorf("unknown post visibility: %s", s)
	}
}

// Post is a family update authored by a profile. Hidden posts are drafts that
// donors never see.
type Post struct {
	ID              string         `gorm:"type:uuid;primaryKey" json:"id"`
	FamilyID        string         `gorm:"type:uuid;not null;index" json:"family_id"`
	CreatedByUserID string         `gorm:"type:uuid;not null" json:"created_by_user_id"`
	Title           string         `gorm:"type:varchar(250);" json:"title"`
	Body            string         `gorm:"type:text;not null" json:"body"`
	Visibility      PostVisibility `gorm:"type:varchar(50);default:'visible'" json:"visibility"`

	Family *Family      `gorm:"foreignKey:FamilyID;references:ID;constraint:OnDelete:CASCADE" json:"family,omitempty"`
	Author *Profile     `gorm:"foreignKey:CreatedByUserID;references:ID" json:"author,omitempty"`
	Media  []*PostMedia `gorm:"foreignKey:PostID;references:ID;constraint:OnDelete:CASCADE" json:"media,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Post) TableName() string {
	return "posts"
}

// PostUpdate is used for partial updates of a post.
type PostUpdate struct {
	Title      *string         `json:"title"`
	Body       *string         `json:"body"`
	Visibility *PostVisibility `json:"visibility"`
}

// PostMedia is an attachment of a post, ordered by creation time.
type PostMedia struct {
	ID        string `gorm:"type:uuid;primaryKey" json:"id"`
	PostID    string `gorm:"type:uuid;not null;index" json:"post_id"`
	FileURL   string `gorm:"type:varchar(500);not null" json:"file_url"`
	MediaType string `gorm:"type:varchar(50);default:'image'" json:"media_type"`
	Caption   string `gorm:"type:varchar(500);" json:"caption"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (PostMedia) TableName() string {
	return "post_media"
}
