package models

// Conversation pairs one end-user with one admin. AdminID is null while the
// conversation waits for assignment.
type Conversation struct {
	BaseModel
	UserID  string  `gorm:"type:uuid;not null;index" json:"userId"`
	AdminID *string `gorm:"type:uuid;index" json:"adminId,omitempty"`
	Subject string  `json:"subject"`
	Closed  bool    `gorm:"default:false" json:"closed"`

	User     *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Admin    *User     `gorm:"foreignKey:AdminID" json:"admin,omitempty"`
	Messages []Message `gorm:"foreignKey:ConversationID" json:"messages,omitempty"`
}

type Message struct {
	BaseModel
	ConversationID string `gorm:"type:uuid;not null;index" json:"conversationId"`
	SenderID       string `gorm:"type:uuid;not null" json:"senderId"`
	Body           string `gorm:"not null" json:"body"`
	Read           bool   `gorm:"default:false" json:"read"`
}
