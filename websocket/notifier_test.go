package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifierFileUploaded(t *testing.T) {
	bus := NewLocalBus()
	sink := newChanSink(8)
	bus.Subscribe(KindChat.Channel(7), sink)

	n := NewNotifier(bus, KindChat)
	event := FileEvent{
		ID:       3,
		RoomID:   7,
		FileName: "photo.png",
		FileSize: 2048,
		File:     "http://localhost:8080/uploads/file/chat_files/photo.png",
		SenderID: 1,
		Username: "alice",
	}

	require.NoError(t, n.NotifyFileUploaded(context.Background(), 7, event))

	payloads := sink.drain()
	require.Len(t, payloads, 1)

	var got FileEvent
	require.NoError(t, json.Unmarshal(payloads[0], &got))
	assert.Equal(t, event.ID, got.ID)
	assert.Equal(t, event.FileName, got.FileName)
	assert.Equal(t, event.FileSize, got.FileSize)
}

func TestNotifierKeepsKindsApart(t *testing.T) {
	bus := NewLocalBus()
	chatSink := newChanSink(8)
	groupSink := newChanSink(8)

	// ChatRoom 1 and Group 1 are different rooms despite the shared ID; a
	// group notification must never reach a direct-chat subscriber.
	bus.Subscribe(KindChat.Channel(1), chatSink)
	bus.Subscribe(KindGroup.Channel(1), groupSink)

	n := NewNotifier(bus, KindGroup)
	require.NoError(t, n.NotifyMessage(context.Background(), 1, MessageEvent{ID: 9, RoomID: 1, Text: "standup at ten", SenderID: 2}))

	assert.Empty(t, chatSink.drain(), "direct-chat subscriber received a group event")

	payloads := groupSink.drain()
	require.Len(t, payloads, 1)
	var got MessageEvent
	require.NoError(t, json.Unmarshal(payloads[0], &got))
	assert.Equal(t, "standup at ten", got.Text)
}

func TestNotifierNoSubscribers(t *testing.T) {
	// Notify succeeds even when nobody is listening; fire-and-forget.
	n := NewNotifier(NewLocalBus(), KindChat)
	require.NoError(t, n.NotifyFileUploaded(context.Background(), 123, FileEvent{ID: 1, RoomID: 123}))
}

type failingBus struct{}

func (failingBus) Subscribe(string, Sink)   {}
func (failingBus) Unsubscribe(string, Sink) {}
func (failingBus) Publish(context.Context, string, []byte) error {
	return errors.New("bus unreachable")
}

func TestNotifierDeliveryError(t *testing.T) {
	n := NewNotifier(failingBus{}, KindChat)

	err := n.NotifyFileUploaded(context.Background(), 7, FileEvent{ID: 3, RoomID: 7})
	assert.ErrorIs(t, err, ErrDelivery)

	err = n.NotifyMessage(context.Background(), 7, MessageEvent{ID: 4, RoomID: 7, Text: "hi", CreatedAt: time.Now()})
	assert.ErrorIs(t, err, ErrDelivery)
}
