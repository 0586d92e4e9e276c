package websocket

import (
	"context"
	"fmt"
	"sync"

	"github.com/friendnet/friendnet_backend/metrics"
)

// RoomKind names one of the two room namespaces carried by the bus.
// Direct-chat rooms and groups have independent ID sequences, so the bus
// channel key always carries the kind alongside the numeric ID.
type RoomKind string

const (
	KindChat  RoomKind = "chat"
	KindGroup RoomKind = "group"
)

// Channel returns the bus channel key for one room of this kind.
func (k RoomKind) Channel(roomID uint) string {
	return fmt.Sprintf("%s:%d", k, roomID)
}

// Sink receives serialized events for one subscriber. Deliver must not
// block; it reports false when the payload could not be accepted.
type Sink interface {
	Deliver(payload []byte) bool
}

// Bus fans a published event out to every sink subscribed to a channel.
// Publish on a single channel is FIFO from a single publisher; delivery is
// at-least-once.
type Bus interface {
	Subscribe(channel string, s Sink)
	Unsubscribe(channel string, s Sink)
	Publish(ctx context.Context, channel string, payload []byte) error
}

// LocalBus is the in-process Bus: a concurrency-safe map from channel to
// subscriber set. Sufficient for a single instance; RedisBus layers
// cross-process distribution on top of it.
type LocalBus struct {
	mu       sync.RWMutex
	channels map[string]map[Sink]bool
}

func NewLocalBus() *LocalBus {
	return &LocalBus{channels: make(map[string]map[Sink]bool)}
}

func (b *LocalBus) Subscribe(channel string, s Sink) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.channels[channel]; !ok {
		b.channels[channel] = make(map[Sink]bool)
	}
	b.channels[channel][s] = true
}

func (b *LocalBus) Unsubscribe(channel string, s Sink) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if subs, ok := b.channels[channel]; ok {
		delete(subs, s)
		if len(subs) == 0 {
			delete(b.channels, channel)
		}
	}
}

func (b *LocalBus) Publish(_ context.Context, channel string, payload []byte) error {
	b.mu.RLock()
	var slow []Sink
	for s := range b.channels[channel] {
		if !s.Deliver(payload) {
			slow = append(slow, s)
		}
	}
	b.mu.RUnlock()

	// Drop subscribers whose buffers are full rather than stalling the
	// whole channel.
	for _, s := range slow {
		metrics.FramesDropped.Inc()
		b.Unsubscribe(channel, s)
	}
	return nil
}

// Subscribers reports the number of sinks currently subscribed to a channel.
func (b *LocalBus) Subscribers(channel string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.channels[channel])
}
