package controllers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/friendnet/friendnet_backend/config"
	"github.com/friendnet/friendnet_backend/controllers"
	"github.com/friendnet/friendnet_backend/models"
	"github.com/friendnet/friendnet_backend/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type captureSink struct {
	ch chan []byte
}

func (s *captureSink) Deliver(payload []byte) bool {
	select {
	case s.ch <- payload:
		return true
	default:
		return false
	}
}

type unreachableBus struct{}

func (unreachableBus) Subscribe(string, websocket.Sink)   {}
func (unreachableBus) Unsubscribe(string, websocket.Sink) {}
func (unreachableBus) Publish(context.Context, string, []byte) error {
	return errors.New("bus unreachable")
}

func newChatRouter(db *gorm.DB, bus websocket.Bus) *controllers.ChatController {
	cfg := config.Config{UploadDir: "uploads", BaseURL: "http://localhost:8080"}
	dir := websocket.NewDirectory(db, cfg.BaseURL)
	store := websocket.NewChatStore(db, dir)
	return &controllers.ChatController{
		DB:       db,
		Rooms:    store,
		Store:    store,
		Notifier: websocket.NewNotifier(bus, websocket.KindChat),
		Cfg:      cfg,
	}
}

func postForm(router http.Handler, target string, form url.Values) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	router.ServeHTTP(w, req)
	return w
}

func TestCreateMessageBroadcastsToSubscribers(t *testing.T) {
	db := testDB(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	room := models.ChatRoom{}
	require.NoError(t, db.Create(&room).Error)
	require.NoError(t, db.Model(&room).Association("Members").Append(&alice, &bob))

	bus := websocket.NewLocalBus()
	sink := &captureSink{ch: make(chan []byte, 8)}
	bus.Subscribe(websocket.KindChat.Channel(room.ID), sink)

	chat := newChatRouter(db, bus)
	router := asUser(alice.ID)
	router.POST("/api/chat/:id/messages", chat.CreateMessage)

	w := postForm(router, "/api/chat/1/messages", url.Values{"text": {"hello bob"}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Persisted first.
	var msg models.ChatMessage
	require.NoError(t, db.First(&msg).Error)
	assert.Equal(t, "hello bob", msg.Text)
	assert.Equal(t, alice.ID, msg.SenderID)

	// Then announced with the denormalized payload.
	select {
	case payload := <-sink.ch:
		var ev websocket.MessageEvent
		require.NoError(t, json.Unmarshal(payload, &ev))
		assert.Equal(t, msg.ID, ev.ID)
		assert.Equal(t, "hello bob", ev.Text)
		assert.Equal(t, "alice", ev.Username)
	default:
		t.Fatal("expected a broadcast event for the room")
	}
}

func TestCreateMessageRejectsNonMember(t *testing.T) {
	db := testDB(t)
	alice := createUser(t, db, "alice")
	mallory := createUser(t, db, "mallory")

	room := models.ChatRoom{}
	require.NoError(t, db.Create(&room).Error)
	require.NoError(t, db.Model(&room).Association("Members").Append(&alice))

	chat := newChatRouter(db, websocket.NewLocalBus())
	router := asUser(mallory.ID)
	router.POST("/api/chat/:id/messages", chat.CreateMessage)

	w := postForm(router, "/api/chat/1/messages", url.Values{"text": {"let me in"}})
	assert.Equal(t, http.StatusForbidden, w.Code)

	var count int64
	require.NoError(t, db.Model(&models.ChatMessage{}).Count(&count).Error)
	assert.Zero(t, count, "authorization must precede persistence")
}

func TestCreateMessageRejectsEmptyPayload(t *testing.T) {
	db := testDB(t)
	alice := createUser(t, db, "alice")

	room := models.ChatRoom{}
	require.NoError(t, db.Create(&room).Error)
	require.NoError(t, db.Model(&room).Association("Members").Append(&alice))

	chat := newChatRouter(db, websocket.NewLocalBus())
	router := asUser(alice.ID)
	router.POST("/api/chat/:id/messages", chat.CreateMessage)

	w := postForm(router, "/api/chat/1/messages", url.Values{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateMessageSurvivesDeliveryFailure(t *testing.T) {
	db := testDB(t)
	alice := createUser(t, db, "alice")

	room := models.ChatRoom{}
	require.NoError(t, db.Create(&room).Error)
	require.NoError(t, db.Model(&room).Association("Members").Append(&alice))

	chat := newChatRouter(db, unreachableBus{})
	router := asUser(alice.ID)
	router.POST("/api/chat/:id/messages", chat.CreateMessage)

	w := postForm(router, "/api/chat/1/messages", url.Values{"text": {"still stored"}})
	assert.Equal(t, http.StatusBadGateway, w.Code)

	// The stored message is not rolled back by the notification failure.
	var msg models.ChatMessage
	require.NoError(t, db.First(&msg).Error)
	assert.Equal(t, "still stored", msg.Text)
}

func TestListMessagesMemberOnly(t *testing.T) {
	db := testDB(t)
	alice := createUser(t, db, "alice")
	mallory := createUser(t, db, "mallory")

	room := models.ChatRoom{}
	require.NoError(t, db.Create(&room).Error)
	require.NoError(t, db.Model(&room).Association("Members").Append(&alice))
	require.NoError(t, db.Create(&models.ChatMessage{RoomID: room.ID, SenderID: alice.ID, Text: "hi"}).Error)

	chat := newChatRouter(db, websocket.NewLocalBus())
	router := asUser(mallory.ID)
	router.GET("/api/chat/:id/messages", chat.ListMessages)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/chat/1/messages", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
