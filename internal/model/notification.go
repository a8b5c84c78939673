package model

import "time"

const (
	ChannelInApp = "in_app"
	ChannelEmail = "email"
	ChannelPush  = "push"
)

// Notification 站内通知
type Notification struct {
	BaseModel
	UserID uint       `gorm:"index;not null" json:"userId"`
	Type   string     `gorm:"size:50;not null" json:"type"`
	Title  string     `gorm:"size:255;not null" json:"title"`
	Body   string     `gorm:"type:text" json:"body"`
	Link   string     `gorm:"size:255" json:"link,omitempty"`
	IsRead bool       `gorm:"default:false" json:"isRead"`
	ReadAt *time.Time `json:"readAt,omitempty"`
}

func (Notification) TableName() string {
	return "notifications"
}
