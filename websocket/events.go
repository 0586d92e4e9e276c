package websocket

import "time"

// MessageEvent is the denormalized chat-message payload pushed to every
// subscriber of a room. It carries the sender's display fields so clients
// render without further lookups.
type MessageEvent struct {
	ID           uint      `json:"id"`
	RoomID       uint      `json:"room_id"`
	Text         string    `json:"text"`
	SenderID     uint      `json:"sender_id"`
	Username     string    `json:"username"`
	ProfileImage string    `json:"profile_image"`
	CreatedAt    time.Time `json:"created_at"`
}

// FileEvent announces a file persisted through the REST upload path.
type FileEvent struct {
	ID           uint      `json:"id"`
	RoomID       uint      `json:"room_id"`
	FileName     string    `json:"file_name"`
	FileSize     int64     `json:"file_size"`
	File         string    `json:"file"`
	SenderID     uint      `json:"sender_id"`
	Username     string    `json:"username"`
	ProfileImage string    `json:"profile_image"`
	CreatedAt    time.Time `json:"created_at"`
}

// inboundFrame is the only payload clients send over the socket. File
// attachments go through the REST upload path instead.
type inboundFrame struct {
	Text   string `json:"text"`
	RoomID uint   `json:"room_id"`
}

type errorFrame struct {
	Error string `json:"error"`
}
