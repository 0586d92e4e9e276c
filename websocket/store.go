package websocket

import (
	"fmt"
	"strings"

	"github.com/friendnet/friendnet_backend/models"
	"gorm.io/gorm"
)

// Profile carries the display fields embedded in every broadcast event.
type Profile struct {
	Username     string
	ProfileImage string
}

// Directory resolves a user ID to its display profile.
type Directory interface {
	ResolveProfile(userID uint) (Profile, error)
}

// RoomSource answers membership questions for one room kind (direct chat
// or group). Queried once at connect time and again per inbound frame.
type RoomSource interface {
	RoomsForUser(userID uint) ([]uint, error)
	IsMember(roomID, userID uint) (bool, error)
}

// MessageStore persists a message atomically and returns the denormalized
// event to broadcast. Creation is rejected with ErrEmptyMessage when the
// message carries neither text nor a file.
type MessageStore interface {
	CreateMessage(roomID, senderID uint, text string) (MessageEvent, error)
	CreateFileMessage(roomID, senderID uint, text, file, fileName string, fileSize int64) (FileEvent, error)
}

// GormDirectory reads display profiles from the relational store. Image
// paths are made absolute against the service base URL so receivers need
// no further lookups.
type GormDirectory struct {
	db      *gorm.DB
	baseURL string
}

func NewDirectory(db *gorm.DB, baseURL string) *GormDirectory {
	return &GormDirectory{db: db, baseURL: baseURL}
}

func (d *GormDirectory) ResolveProfile(userID uint) (Profile, error) {
	var profile models.UserProfile
	if err := d.db.Preload("User").First(&profile, "user_id = ?", userID).Error; err != nil {
		return Profile{}, fmt.Errorf("resolve profile %d: %w", userID, err)
	}

	image := ""
	if profile.ProfileImage != "" {
		image = d.baseURL + "/" + profile.ProfileImage
	}
	return Profile{Username: profile.User.Username, ProfileImage: image}, nil
}

// ChatStore backs the direct-chat endpoint.
type ChatStore struct {
	db  *gorm.DB
	dir Directory
}

func NewChatStore(db *gorm.DB, dir Directory) *ChatStore {
	return &ChatStore{db: db, dir: dir}
}

func (s *ChatStore) RoomsForUser(userID uint) ([]uint, error) {
	var ids []uint
	err := s.db.Table("chat_room_members").
		Where("user_id = ?", userID).
		Pluck("chat_room_id", &ids).Error
	return ids, err
}

func (s *ChatStore) IsMember(roomID, userID uint) (bool, error) {
	var count int64
	err := s.db.Table("chat_room_members").
		Where("chat_room_id = ? AND user_id = ?", roomID, userID).
		Count(&count).Error
	return count > 0, err
}

func (s *ChatStore) CreateMessage(roomID, senderID uint, text string) (MessageEvent, error) {
	if strings.TrimSpace(text) == "" {
		return MessageEvent{}, ErrEmptyMessage
	}

	profile, err := s.dir.ResolveProfile(senderID)
	if err != nil {
		return MessageEvent{}, err
	}

	msg := models.ChatMessage{RoomID: roomID, SenderID: senderID, Text: text}
	if err := s.db.Create(&msg).Error; err != nil {
		return MessageEvent{}, fmt.Errorf("create chat message: %w", err)
	}

	return MessageEvent{
		ID:           msg.ID,
		RoomID:       roomID,
		Text:         text,
		SenderID:     senderID,
		Username:     profile.Username,
		ProfileImage: profile.ProfileImage,
		CreatedAt:    msg.CreatedAt,
	}, nil
}

func (s *ChatStore) CreateFileMessage(roomID, senderID uint, text, file, fileName string, fileSize int64) (FileEvent, error) {
	if strings.TrimSpace(text) == "" && file == "" {
		return FileEvent{}, ErrEmptyMessage
	}

	profile, err := s.dir.ResolveProfile(senderID)
	if err != nil {
		return FileEvent{}, err
	}

	msg := models.ChatMessage{
		RoomID:   roomID,
		SenderID: senderID,
		Text:     text,
		File:     file,
		FileName: fileName,
		FileSize: fileSize,
	}
	if err := s.db.Create(&msg).Error; err != nil {
		return FileEvent{}, fmt.Errorf("create chat file message: %w", err)
	}

	return FileEvent{
		ID:           msg.ID,
		RoomID:       roomID,
		FileName:     fileName,
		FileSize:     fileSize,
		File:         file,
		SenderID:     senderID,
		Username:     profile.Username,
		ProfileImage: profile.ProfileImage,
		CreatedAt:    msg.CreatedAt,
	}, nil
}

// GroupStore backs the group-chat endpoint. Same contract as ChatStore
// over the group tables.
type GroupStore struct {
	db  *gorm.DB
	dir Directory
}

func NewGroupStore(db *gorm.DB, dir Directory) *GroupStore {
	return &GroupStore{db: db, dir: dir}
}

func (s *GroupStore) RoomsForUser(userID uint) ([]uint, error) {
	var ids []uint
	err := s.db.Table("group_members").
		Where("user_id = ?", userID).
		Pluck("group_id", &ids).Error
	return ids, err
}

func (s *GroupStore) IsMember(roomID, userID uint) (bool, error) {
	var count int64
	err := s.db.Table("group_members").
		Where("group_id = ? AND user_id = ?", roomID, userID).
		Count(&count).Error
	return count > 0, err
}

func (s *GroupStore) CreateMessage(roomID, senderID uint, text string) (MessageEvent, error) {
	if strings.TrimSpace(text) == "" {
		return MessageEvent{}, ErrEmptyMessage
	}

	profile, err := s.dir.ResolveProfile(senderID)
	if err != nil {
		return MessageEvent{}, err
	}

	msg := models.GroupMessage{RoomID: roomID, SenderID: senderID, Text: text}
	if err := s.db.Create(&msg).Error; err != nil {
		return MessageEvent{}, fmt.Errorf("create group message: %w", err)
	}

	return MessageEvent{
		ID:           msg.ID,
		RoomID:       roomID,
		Text:         text,
		SenderID:     senderID,
		Username:     profile.Username,
		ProfileImage: profile.ProfileImage,
		CreatedAt:    msg.CreatedAt,
	}, nil
}

func (s *GroupStore) CreateFileMessage(roomID, senderID uint, text, file, fileName string, fileSize int64) (FileEvent, error) {
	if strings.TrimSpace(text) == "" && file == "" {
		return FileEvent{}, ErrEmptyMessage
	}

	profile, err := s.dir.ResolveProfile(senderID)
	if err != nil {
		return FileEvent{}, err
	}

	msg := models.GroupMessage{
		RoomID:   roomID,
		SenderID: senderID,
		Text:     text,
		File:     file,
		FileName: fileName,
		FileSize: fileSize,
	}
	if err := s.db.Create(&msg).Error; err != nil {
		return FileEvent{}, fmt.Errorf("create group file message: %w", err)
	}

	return FileEvent{
		ID:           msg.ID,
		RoomID:       roomID,
		FileName:     fileName,
		FileSize:     fileSize,
		File:         file,
		SenderID:     senderID,
		Username:     profile.Username,
		ProfileImage: profile.ProfileImage,
		CreatedAt:    msg.CreatedAt,
	}, nil
}
