package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/friendnet/friendnet_backend/metrics"
)

// Notifier lets the REST layer push events into a room's broadcast stream
// after an ordinary create request. Synchronous up to the publish call,
// fire-and-forget with respect to delivery.
type Notifier struct {
	bus  Bus
	kind RoomKind
}

func NewNotifier(bus Bus, kind RoomKind) *Notifier {
	return &Notifier{bus: bus, kind: kind}
}

// NotifyFileUploaded announces a persisted file message to the room's
// subscribers. A failure to reach the bus is returned as ErrDelivery; the
// stored record stands either way.
func (n *Notifier) NotifyFileUploaded(ctx context.Context, roomID uint, event FileEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}

	if err := n.bus.Publish(ctx, n.kind.Channel(roomID), payload); err != nil {
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}

	metrics.MessagesBroadcast.WithLabelValues("file-uploaded").Inc()
	return nil
}

// NotifyMessage does the same for a text message created over REST.
func (n *Notifier) NotifyMessage(ctx context.Context, roomID uint, event MessageEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}

	if err := n.bus.Publish(ctx, n.kind.Channel(roomID), payload); err != nil {
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}

	metrics.MessagesBroadcast.WithLabelValues("chat-message").Inc()
	return nil
}
