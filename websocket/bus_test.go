package websocket

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chanSink struct {
	ch chan []byte
}

func newChanSink(buffer int) *chanSink {
	return &chanSink{ch: make(chan []byte, buffer)}
}

func (s *chanSink) Deliver(payload []byte) bool {
	select {
	case s.ch <- payload:
		return true
	default:
		return false
	}
}

func (s *chanSink) drain() [][]byte {
	var out [][]byte
	for {
		select {
		case p := <-s.ch:
			out = append(out, p)
		default:
			return out
		}
	}
}

func TestLocalBusFanOut(t *testing.T) {
	bus := NewLocalBus()

	a := newChanSink(8)
	b := newChanSink(8)
	other := newChanSink(8)

	bus.Subscribe("chat:1", a)
	bus.Subscribe("chat:1", b)
	bus.Subscribe("chat:2", other)

	require.NoError(t, bus.Publish(context.Background(), "chat:1", []byte("hello")))

	assert.Equal(t, [][]byte{[]byte("hello")}, a.drain())
	assert.Equal(t, [][]byte{[]byte("hello")}, b.drain())
	assert.Empty(t, other.drain(), "subscriber of another room must not receive the event")
}

func TestRoomKindChannelsAreDisjoint(t *testing.T) {
	bus := NewLocalBus()

	chat := newChanSink(8)
	group := newChanSink(8)

	// A direct-chat room and a group can share the same numeric ID; their
	// bus channels must still be distinct.
	bus.Subscribe(KindChat.Channel(1), chat)
	bus.Subscribe(KindGroup.Channel(1), group)

	require.NoError(t, bus.Publish(context.Background(), KindGroup.Channel(1), []byte("group event")))

	assert.Empty(t, chat.drain(), "direct-chat subscriber must not receive group events for the same room ID")
	assert.Equal(t, [][]byte{[]byte("group event")}, group.drain())
}

func TestLocalBusPublishOrder(t *testing.T) {
	bus := NewLocalBus()
	sink := newChanSink(16)
	bus.Subscribe("chat:1", sink)

	for i := 0; i < 10; i++ {
		require.NoError(t, bus.Publish(context.Background(), "chat:1", []byte(fmt.Sprintf("m%d", i))))
	}

	got := sink.drain()
	require.Len(t, got, 10)
	for i, p := range got {
		assert.Equal(t, fmt.Sprintf("m%d", i), string(p))
	}
}

func TestLocalBusUnsubscribe(t *testing.T) {
	bus := NewLocalBus()
	sink := newChanSink(8)

	bus.Subscribe("chat:1", sink)
	assert.Equal(t, 1, bus.Subscribers("chat:1"))

	bus.Unsubscribe("chat:1", sink)
	assert.Equal(t, 0, bus.Subscribers("chat:1"))

	// Unsubscribing again is a no-op.
	bus.Unsubscribe("chat:1", sink)

	require.NoError(t, bus.Publish(context.Background(), "chat:1", []byte("late")))
	assert.Empty(t, sink.drain())
}

func TestLocalBusDropsSlowSink(t *testing.T) {
	bus := NewLocalBus()
	slow := newChanSink(1)
	healthy := newChanSink(8)

	bus.Subscribe("chat:1", slow)
	bus.Subscribe("chat:1", healthy)

	require.NoError(t, bus.Publish(context.Background(), "chat:1", []byte("one")))
	require.NoError(t, bus.Publish(context.Background(), "chat:1", []byte("two")))

	// The slow sink's buffer filled after the first event, so it was
	// unsubscribed; the healthy one keeps receiving.
	assert.Equal(t, 1, bus.Subscribers("chat:1"))
	assert.Len(t, healthy.drain(), 2)
	assert.Len(t, slow.drain(), 1)
}

func TestLocalBusPublishEmptyRoom(t *testing.T) {
	bus := NewLocalBus()
	require.NoError(t, bus.Publish(context.Background(), "chat:99", []byte("nobody home")))
}
