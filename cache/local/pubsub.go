package local

import (
	"context"
	"sync"
)

// LocalMessage is an in-process pub/sub message.
type LocalMessage struct {
	Channel string
	Payload string
}

// LocalPubSub is an in-process fan-out pub/sub implementation. Subscribers
// are registered per channel name under a process-unique ID so a single
// subscription spanning several channels can be torn down in one call.
type LocalPubSub struct {
	mu      sync.RWMutex
	nextID  uint64
	subs    map[string]map[uint64]chan *LocalMessage
	bufSize int
}

// NewPubSub creates a LocalPubSub with the given per-subscriber buffer size.
func NewPubSub(bufSize int) *LocalPubSub {
	if bufSize <= 0 {
		bufSize = 256
	}
	return &LocalPubSub{
		subs:    make(map[string]map[uint64]chan *LocalMessage),
		bufSize: bufSize,
	}
}

// Publish delivers a message to every subscriber of the channel. Delivery is
// non-blocking: a subscriber whose buffer is full misses the message rather
// than stalling the publisher.
func (ps *LocalPubSub) Publish(_ context.Context, channel, payload string) error {
	msg := &LocalMessage{Channel: channel, Payload: payload}
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	for _, ch := range ps.subs[channel] {
		select {
		case ch <- msg:
		default:
		}
	}
	return nil
}

// Subscribe registers one buffered channel across all the given channel
// names. The returned cancel removes the registration and closes the
// channel; calling it more than once is safe.
func (ps *LocalPubSub) Subscribe(_ context.Context, channels ...string) (<-chan *LocalMessage, func(), error) {
	ch := make(chan *LocalMessage, ps.bufSize)

	ps.mu.Lock()
	id := ps.nextID
	ps.nextID++
	for _, name := range channels {
		m, ok := ps.subs[name]
		if !ok {
			m = make(map[uint64]chan *LocalMessage)
			ps.subs[name] = m
		}
		m[id] = ch
	}
	ps.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			ps.mu.Lock()
			for _, name := range channels {
				if m, ok := ps.subs[name]; ok {
					delete(m, id)
					if len(m) == 0 {
						delete(ps.subs, name)
					}
				}
			}
			ps.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel, nil
}
