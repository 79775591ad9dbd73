package models

import "time"

type User struct {
	BaseModel
	Email         string   `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash  string   `gorm:"" json:"-"` // empty for OAuth-only accounts
	Name          string   `json:"name"`
	Phone         string   `json:"phone"`
	Avatar        string   `json:"avatar"`
	Role          UserRole `gorm:"type:varchar(20);not null;default:'USER'" json:"role"`
	OwnerVerified bool     `gorm:"default:false" json:"ownerVerified"`
	Credits       *float64 `json:"credits,omitempty"`
	OAuthProvider string   `gorm:"type:varchar(30)" json:"-"`

	// Relations
	Listings      []Listing      `gorm:"foreignKey:OwnerID" json:"-"`
	RefreshTokens []RefreshToken `gorm:"foreignKey:UserID" json:"-"`
}

type RefreshToken struct {
	BaseModel
	UserID    string    `gorm:"not null;index" json:"userId"`
	Token     string    `gorm:"not null;uniqueIndex" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expiresAt"`
}
