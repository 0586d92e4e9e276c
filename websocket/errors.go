package websocket

import "errors"

var (
	// ErrAuthFailure rejects a handshake before the connection is accepted.
	ErrAuthFailure = errors.New("websocket: authentication failed")

	// ErrNotMember marks an inbound frame for a room the sender is not
	// subscribed to. The frame is dropped, the connection stays open.
	ErrNotMember = errors.New("websocket: not a member of room")

	// ErrEmptyMessage rejects a message carrying neither text nor a file.
	ErrEmptyMessage = errors.New("websocket: message has no text or file")

	// ErrDelivery reports a publish that never reached the bus. The
	// persisted record is not rolled back.
	ErrDelivery = errors.New("websocket: broadcast delivery failed")
)
