package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/friendnet/friendnet_backend/metrics"
	"github.com/friendnet/friendnet_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins
	},
}

// Gateway owns the lifecycle of realtime connections for one endpoint
// kind. The direct-chat and group-chat endpoints are two Gateways over the
// same bus, differing in the injected RoomSource and MessageStore and in
// the RoomKind that namespaces their bus channels.
type Gateway struct {
	secret string
	bus    Bus
	kind   RoomKind
	rooms  RoomSource
	store  MessageStore
	dir    Directory
	echo   bool
}

func NewGateway(secret string, bus Bus, kind RoomKind, rooms RoomSource, store MessageStore, dir Directory, echo bool) *Gateway {
	return &Gateway{
		secret: secret,
		bus:    bus,
		kind:   kind,
		rooms:  rooms,
		store:  store,
		dir:    dir,
		echo:   echo,
	}
}

// Authenticate validates the handshake's token query parameter and
// resolves the user it references. It runs before the upgrade, so a failed
// handshake never reaches the websocket protocol.
func (g *Gateway) Authenticate(c *gin.Context) (uint, error) {
	token := c.Query("token")
	if token == "" {
		return 0, fmt.Errorf("%w: missing token", ErrAuthFailure)
	}

	userID, err := utils.ParseToken(token, g.secret)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrAuthFailure, err)
	}

	// The token may outlive its account.
	if _, err := g.dir.ResolveProfile(userID); err != nil {
		return 0, fmt.Errorf("%w: unknown user %d", ErrAuthFailure, userID)
	}

	return userID, nil
}

// HandleConnection handles websocket connections
func (g *Gateway) HandleConnection(c *gin.Context) {
	userID, err := g.Authenticate(c)
	if err != nil {
		log.Debug().Err(err).Msg("websocket handshake refused")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	roomIDs, err := g.rooms.RoomsForUser(userID)
	if err != nil {
		log.Error().Err(err).Uint("user_id", userID).Msg("loading rooms for connection")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load rooms"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("error upgrading connection")
		return
	}

	client := &Client{
		gateway: g,
		conn:    conn,
		send:    make(chan []byte, 256),
		userID:  userID,
		rooms:   make(map[uint]bool, len(roomIDs)),
	}

	// Subscribe before the pumps start so a broadcast for a just-joined
	// room cannot slip past the connection. The rooms map is read-only
	// from here on.
	for _, roomID := range roomIDs {
		client.rooms[roomID] = true
		g.bus.Subscribe(g.kind.Channel(roomID), client)
	}

	metrics.WsConnections.Inc()
	log.Info().Uint("user_id", userID).Int("rooms", len(roomIDs)).Msg("websocket connected")

	go client.writePump()
	go client.readPump()
}

// handleInbound processes one frame from a connected client: authorize,
// persist, then publish. Failures are reported to the sender only and
// never close the connection.
func (g *Gateway) handleInbound(client *Client, raw []byte) {
	var frame inboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		g.sendError(client, "malformed payload")
		return
	}

	if !client.subscribed(frame.RoomID) {
		log.Warn().Uint("user_id", client.userID).Uint("room_id", frame.RoomID).
			Msg("frame for room the sender is not subscribed to")
		g.sendError(client, "not a member of this room")
		return
	}

	event, err := g.store.CreateMessage(frame.RoomID, client.userID, frame.Text)
	if err != nil {
		if errors.Is(err, ErrEmptyMessage) {
			g.sendError(client, "message has no text or file")
			return
		}
		log.Error().Err(err).Uint("room_id", frame.RoomID).Msg("persisting message")
		g.sendError(client, "failed to store message")
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("marshaling message event")
		return
	}

	// The message is durable at this point; a publish failure costs
	// realtime delivery, never the stored record.
	if err := g.bus.Publish(context.Background(), g.kind.Channel(frame.RoomID), payload); err != nil {
		log.Error().Err(err).Uint("room_id", frame.RoomID).Uint("message_id", event.ID).
			Msg("broadcast failed for stored message")
		return
	}

	metrics.MessagesBroadcast.WithLabelValues("chat-message").Inc()
}

func (g *Gateway) sendError(client *Client, msg string) {
	payload, err := json.Marshal(errorFrame{Error: msg})
	if err != nil {
		return
	}
	select {
	case client.send <- payload:
	default:
	}
}
