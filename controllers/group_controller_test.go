package controllers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/friendnet/friendnet_backend/config"
	"github.com/friendnet/friendnet_backend/controllers"
	"github.com/friendnet/friendnet_backend/models"
	"github.com/friendnet/friendnet_backend/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newGroupController(db *gorm.DB, bus websocket.Bus) *controllers.GroupController {
	cfg := config.Config{UploadDir: "uploads", BaseURL: "http://localhost:8080"}
	dir := websocket.NewDirectory(db, cfg.BaseURL)
	store := websocket.NewGroupStore(db, dir)
	return &controllers.GroupController{
		DB:       db,
		Rooms:    store,
		Store:    store,
		Notifier: websocket.NewNotifier(bus, websocket.KindGroup),
		Cfg:      cfg,
	}
}

func createGroup(t *testing.T, db *gorm.DB, creator models.User, image string, members ...models.User) models.Group {
	t.Helper()

	group := models.Group{
		Name:      "hikers",
		CreatorID: creator.ID,
		Image:     image,
		Members:   append([]models.User{creator}, members...),
	}
	require.NoError(t, db.Omit("Members.*").Create(&group).Error)
	return group
}

func TestGetGroupImageURLIsAbsolute(t *testing.T) {
	db := testDB(t)
	alice := createUser(t, db, "alice")
	group := createGroup(t, db, alice, "image/group_profile/trail.png")

	groups := newGroupController(db, websocket.NewLocalBus())
	router := asUser(alice.ID)
	router.GET("/api/groups/:id", groups.GetGroup)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/groups/1", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Group models.Group `json:"group"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "http://localhost:8080/image/group_profile/trail.png", body.Group.Image)

	// The stored record keeps the relative path.
	var stored models.Group
	require.NoError(t, db.First(&stored, group.ID).Error)
	assert.Equal(t, "image/group_profile/trail.png", stored.Image)
}

func TestListGroupsImageURLIsAbsolute(t *testing.T) {
	db := testDB(t)
	alice := createUser(t, db, "alice")
	createGroup(t, db, alice, "image/group_profile/trail.png")

	groups := newGroupController(db, websocket.NewLocalBus())
	router := asUser(alice.ID)
	router.GET("/api/groups", groups.ListGroups)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/groups", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Groups []models.Group `json:"groups"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Groups, 1)
	assert.Equal(t, "http://localhost:8080/image/group_profile/trail.png", body.Groups[0].Image)
}

func TestGroupMessageStaysOffDirectChatChannel(t *testing.T) {
	db := testDB(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	group := createGroup(t, db, alice, "", bob)

	// A direct-chat room sharing the group's numeric ID. Its subscribers
	// must never see the group's traffic.
	room := models.ChatRoom{ID: group.ID}
	require.NoError(t, db.Create(&room).Error)
	require.NoError(t, db.Model(&room).Association("Members").Append(&alice, &bob))

	bus := websocket.NewLocalBus()
	chatSink := &captureSink{ch: make(chan []byte, 8)}
	groupSink := &captureSink{ch: make(chan []byte, 8)}
	bus.Subscribe(websocket.KindChat.Channel(room.ID), chatSink)
	bus.Subscribe(websocket.KindGroup.Channel(group.ID), groupSink)

	groups := newGroupController(db, bus)
	router := asUser(alice.ID)
	router.POST("/api/groups/:id/messages", groups.CreateMessage)

	w := postForm(router, "/api/groups/1/messages", url.Values{"text": {"trailhead at nine"}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	select {
	case payload := <-groupSink.ch:
		var ev websocket.MessageEvent
		require.NoError(t, json.Unmarshal(payload, &ev))
		assert.Equal(t, "trailhead at nine", ev.Text)
		assert.Equal(t, group.ID, ev.RoomID)
	default:
		t.Fatal("expected a broadcast event for the group")
	}

	select {
	case payload := <-chatSink.ch:
		t.Fatalf("direct-chat subscriber received group event: %s", payload)
	default:
	}

	var chatCount int64
	require.NoError(t, db.Model(&models.ChatMessage{}).Count(&chatCount).Error)
	assert.Zero(t, chatCount)
}
