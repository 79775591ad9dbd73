package models

type Upload struct {
	BaseModel
	UserID      string `gorm:"type:uuid;not null;index" json:"userId"`
	FileName    string `gorm:"not null" json:"fileName"`
	ContentType string `gorm:"not null" json:"contentType"`
	Size        int64  `gorm:"not null" json:"size"`
	Path        string `gorm:"not null" json:"-"`
	ThumbPath   string `json:"-"`
	URL         string `gorm:"-" json:"url"`
	ThumbURL    string `gorm:"-" json:"thumbUrl,omitempty"`
}
