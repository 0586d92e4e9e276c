package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/friendnet/friendnet_backend/config"
	"github.com/friendnet/friendnet_backend/models"
	"github.com/friendnet/friendnet_backend/websocket"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ChatController serves direct-chat rooms and their message history, and
// injects events into the realtime stream through the notifier after a
// message or file is persisted.
type ChatController struct {
	DB       *gorm.DB
	Rooms    websocket.RoomSource
	Store    websocket.MessageStore
	Notifier *websocket.Notifier
	Cfg      config.Config
}

// ListRooms returns the direct-chat rooms the caller belongs to
func (ch *ChatController) ListRooms(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	var rooms []models.ChatRoom
	if err := ch.DB.Preload("Members").
		Joins("JOIN chat_room_members m ON m.chat_room_id = chat_rooms.id").
		Where("m.user_id = ?", userID).
		Find(&rooms).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch rooms"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

// ListMessages returns a room's message history, members only
func (ch *ChatController) ListMessages(c *gin.Context) {
	userID := c.MustGet("userID").(uint)
	roomID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid room ID"})
		return
	}

	member, err := ch.Rooms.IsMember(uint(roomID), userID)
	if err != nil || !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have access to this room"})
		return
	}

	var messages []models.ChatMessage
	if err := ch.DB.Preload("Sender").
		Where("room_id = ?", roomID).
		Order("created_at ASC").
		Find(&messages).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// CreateMessage persists a message sent over REST (multipart: text, file,
// or both) and then announces it to the room's live subscribers. A
// delivery failure is reported as 502 but never rolls the stored message
// back.
func (ch *ChatController) CreateMessage(c *gin.Context) {
	createMessage(c, ch.Rooms, ch.Store, ch.Notifier, ch.Cfg, "file/chat_files")
}

// createMessage is shared by the direct-chat and group-chat controllers;
// they differ only in the injected store pair and upload directory.
func createMessage(c *gin.Context, rooms websocket.RoomSource, store websocket.MessageStore, notifier *websocket.Notifier, cfg config.Config, uploadSubdir string) {
	userID := c.MustGet("userID").(uint)
	roomID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid room ID"})
		return
	}

	member, err := rooms.IsMember(uint(roomID), userID)
	if err != nil || !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have access to this room"})
		return
	}

	text := c.PostForm("text")
	fh, fileErr := c.FormFile("file")

	if fileErr != nil {
		// Text-only message.
		event, err := store.CreateMessage(uint(roomID), userID, text)
		if err != nil {
			if errors.Is(err, websocket.ErrEmptyMessage) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Message needs text or a file"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store message"})
			return
		}

		if err := notifier.NotifyMessage(c.Request.Context(), uint(roomID), event); err != nil {
			log.Error().Err(err).Uint("room_id", event.RoomID).Uint("message_id", event.ID).
				Msg("stored message not announced")
			c.JSON(http.StatusBadGateway, gin.H{"error": "Message stored but not delivered", "data": event})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"data": event})
		return
	}

	path, err := saveUpload(c, fh, cfg.UploadDir, uploadSubdir)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
		return
	}

	event, err := store.CreateFileMessage(uint(roomID), userID, text, cfg.BaseURL+"/"+path, fh.Filename, fh.Size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store message"})
		return
	}

	if err := notifier.NotifyFileUploaded(c.Request.Context(), uint(roomID), event); err != nil {
		log.Error().Err(err).Uint("room_id", event.RoomID).Uint("message_id", event.ID).
			Msg("stored file not announced")
		c.JSON(http.StatusBadGateway, gin.H{"error": "File stored but not delivered", "data": event})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": event})
}
