package models

import (
	"time"
)

type Group struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	CreatorID   uint      `gorm:"not null" json:"creator_id"`
	Creator     User      `gorm:"foreignKey:CreatorID;constraint:OnDelete:CASCADE" json:"creator,omitempty"`
	Image       string    `gorm:"size:512" json:"image,omitempty"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	Members     []User    `gorm:"many2many:group_members;" json:"members,omitempty"`
}

type GroupMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RoomID    uint      `gorm:"column:group_id;not null;index" json:"room_id"`
	Group     Group     `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE" json:"-"`
	SenderID  uint      `gorm:"not null;index" json:"sender_id"`
	Sender    User      `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE" json:"sender,omitempty"`
	Text      string    `gorm:"type:text" json:"text,omitempty"`
	File      string    `gorm:"size:512" json:"file,omitempty"`
	FileName  string    `gorm:"size:255" json:"file_name,omitempty"`
	FileSize  int64     `json:"file_size,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
