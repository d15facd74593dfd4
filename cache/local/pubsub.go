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

type subscription struct {
	ch     chan *LocalMessage
	closed bool
}

// LocalPubSub fans messages out to in-process subscribers. A subscriber
// whose buffer is full misses the message.
type LocalPubSub struct {
	mu       sync.RWMutex
	channels map[string][]*subscription
	bufSize  int
}

// NewPubSub creates a LocalPubSub with bufSize messages of buffer per
// subscriber (256 by default).
func NewPubSub(bufSize int) *LocalPubSub {
	if bufSize <= 0 {
		bufSize = 256
	}
	return &LocalPubSub{channels: make(map[string][]*subscription), bufSize: bufSize}
}

func (ps *LocalPubSub) Publish(_ context.Context, channel, payload string) error {
	msg := &LocalMessage{Channel: channel, Payload: payload}
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	for _, s := range ps.channels[channel] {
		select {
		case s.ch <- msg:
		default:
		}
	}
	return nil
}

// Subscribe listens on channels. The returned cancel closes the message
// channel and may be called more than once.
func (ps *LocalPubSub) Subscribe(_ context.Context, channels ...string) (<-chan *LocalMessage, func(), error) {
	sub := &subscription{ch: make(chan *LocalMessage, ps.bufSize)}
	ps.mu.Lock()
	for _, c := range channels {
		ps.channels[c] = append(ps.channels[c], sub)
	}
	ps.mu.Unlock()

	cancel := func() {
		ps.mu.Lock()
		defer ps.mu.Unlock()
		if sub.closed {
			return
		}
		sub.closed = true
		for _, c := range channels {
			list := ps.channels[c]
			for i, s := range list {
				if s == sub {
					ps.channels[c] = append(list[:i:i], list[i+1:]...)
					break
				}
			}
			if len(ps.channels[c]) == 0 {
				delete(ps.channels, c)
			}
		}
		close(sub.ch)
	}
	return sub.ch, cancel, nil
}
