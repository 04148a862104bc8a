package models

import "time"

// MessageThread is the single running conversation between one donor and one
// family. The composite unique index makes first-contact creation race-safe:
// two concurrent inserts for the same pair cannot both succeed.
type MessageThread struct {
	ID       string `gorm:"type:uuid;primaryKey" json:"id"`
	DonorID  string `gorm:"type:uuid;not null;uniqueIndex:idx_thread_pair" json:"donor_id"`
	FamilyID string `gorm:"type:uuid;not null;uniqueIndex:idx_thread_pair" json:"family_id"`

	Donor  *Profile `gorm:"foreignKey:DonorID;references:ID;constraint:OnDelete:CASCADE" json:"donor,omitempty"`
	Family *Family  `gorm:"foreignKey:FamilyID;references:ID;constraint:OnDelete:CASCADE" json:"family,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (MessageThread) TableName() string {
	return "message_threads"
}

// Message is one entry in a thread's ordered log. BodyEn/BodyAr hold cached
// translations; the original Body is never rewritten. ReadAt stays null until
// a participant other than the sender marks the thread read.
type Message struct {
	ID               string     `gorm:"type:uuid;primaryKey" json:"id"`
	ThreadID         string     `gorm:"type:uuid;not null;index" json:"thread_id"`
	SenderUserID     string     `gorm:"type:uuid;not null" json:"sender_user_id"`
	Body             string     `gorm:"type:text;not null" json:"body"`
	BodyEn           *string    `gorm:"type:text" json:"body_en"`
	BodyAr           *string    `gorm:"type:text" json:"body_ar"`
	OriginalLanguage string     `gorm:"type:varchar(10);" json:"original_language"`
	ReadAt           *time.Time `gorm:"" json:"read_at"`

	// SenderName is resolved from the sender profile on reads; not a column.
	SenderName string `gorm:"-" json:"sender_name,omitempty"`

	Thread *MessageThread `gorm:"foreignKey:ThreadID;references:ID;constraint:OnDelete:CASCADE" json:"thread,omitempty"`
	Sender *Profile       `gorm:"foreignKey:SenderUserID;references:ID" json:"sender,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Message) TableName() string {
	return "messages"
}
