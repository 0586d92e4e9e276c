package models

import (
	"time"
)

// ChatRoom is a direct conversation between exactly two friends. One room
// is created per friend pair, when the friend request is accepted.
type ChatRoom struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Members   []User    `gorm:"many2many:chat_room_members;" json:"members,omitempty"`
}

// ChatMessage carries text, a file attachment, or both. A message with
// neither is rejected before it reaches the database.
type ChatMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RoomID    uint      `gorm:"not null;index" json:"room_id"`
	Room      ChatRoom  `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE" json:"-"`
	SenderID  uint      `gorm:"not null;index" json:"sender_id"`
	Sender    User      `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE" json:"sender,omitempty"`
	Text      string    `gorm:"type:text" json:"text,omitempty"`
	File      string    `gorm:"size:512" json:"file,omitempty"`
	FileName  string    `gorm:"size:255" json:"file_name,omitempty"`
	FileSize  int64     `json:"file_size,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
