package websocket

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Subscriber is the slice of the redis client RedisBus consumes.
// *redis.Client satisfies it.
type Subscriber interface {
	Subscribe(ctx context.Context, channels ...string) *redis.PubSub
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisBus distributes events across server processes through redis
// pub/sub, one redis channel per bus channel. Local fan-out to this
// process's connections goes through an embedded LocalBus; every publish,
// including the publisher's own, arrives via redis so all processes
// observe the same per-channel order.
type RedisBus struct {
	rdb   Subscriber
	local *LocalBus

	mu   sync.Mutex
	subs map[string]*channelSub
}

type channelSub struct {
	pubsub *redis.PubSub
	refs   int
	cancel context.CancelFunc
}

func NewRedisBus(rdb Subscriber) *RedisBus {
	return &RedisBus{
		rdb:   rdb,
		local: NewLocalBus(),
		subs:  make(map[string]*channelSub),
	}
}

func (b *RedisBus) Subscribe(channel string, s Sink) {
	b.local.Subscribe(channel, s)

	b.mu.Lock()
	defer b.mu.Unlock()

	if cs, ok := b.subs[channel]; ok {
		cs.refs++
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	pubsub := b.rdb.Subscribe(ctx, channel)
	b.subs[channel] = &channelSub{pubsub: pubsub, refs: 1, cancel: cancel}

	go b.receive(ctx, channel, pubsub)
}

func (b *RedisBus) receive(ctx context.Context, channel string, pubsub *redis.PubSub) {
	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if err := b.local.Publish(ctx, channel, []byte(msg.Payload)); err != nil {
				log.Error().Err(err).Str("channel", channel).Msg("local fan-out failed")
			}
		}
	}
}

func (b *RedisBus) Unsubscribe(channel string, s Sink) {
	b.local.Unsubscribe(channel, s)

	b.mu.Lock()
	defer b.mu.Unlock()

	cs, ok := b.subs[channel]
	if !ok {
		return
	}
	cs.refs--
	if cs.refs > 0 {
		return
	}

	cs.cancel()
	if err := cs.pubsub.Close(); err != nil {
		log.Error().Err(err).Str("channel", channel).Msg("closing redis subscription")
	}
	delete(b.subs, channel)
}

func (b *RedisBus) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := b.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}
