package multiplayer

import (
	"sync"
	"sync/atomic"
)

// SessionHandle is the transport-neutral interface for communicating with a session.
// It allows the coordinator to push events without depending on Wish, Bubble Tea or
// WebSocket code.
type SessionHandle interface {
	// ID returns the unique session identifier.
	ID() SessionID

	// Send delivers an event asynchronously. It must never block.
	Send(evt SessionEvent)

	// Done returns a channel that closes when the session ends.
	Done() <-chan struct{}
}

// ChannelSession is a SessionHandle backed by a buffered channel.
// When the reader falls behind, the oldest event is dropped: a newer snapshot
// always supersedes an older one.
type ChannelSession struct {
	id       SessionID
	events   chan SessionEvent
	done     chan struct{}
	doneOnce sync.Once
	dropped  atomic.Int64
}

// NewChannelSession creates a session buffering up to bufferSize events.
func NewChannelSession(id SessionID, bufferSize int) *ChannelSession {
	if bufferSize < 1 {
		bufferSize = 64
	}
	return &ChannelSession{
		id:     id,
		events: make(chan SessionEvent, bufferSize),
		done:   make(chan struct{}),
	}
}

// ID returns the session identifier.
func (s *ChannelSession) ID() SessionID {
	return s.id
}

// Send queues evt, dropping the oldest queued event if the buffer is full.
func (s *ChannelSession) Send(evt SessionEvent) {
	select {
	case <-s.done:
		return
	default:
	}

	for range 2 {
		select {
		case s.events <- evt:
			return
		default:
		}
		select {
		case <-s.events:
			s.dropped.Add(1)
		default:
		}
	}
}

// Dropped returns how many queued events were discarded to make room.
func (s *ChannelSession) Dropped() int64 {
	return s.dropped.Load()
}

// Events returns the channel the frontend reads from.
func (s *ChannelSession) Events() <-chan SessionEvent {
	return s.events
}

// Done returns the done channel.
func (s *ChannelSession) Done() <-chan struct{} {
	return s.done
}

// Close marks the session as done. Safe to call multiple times.
func (s *ChannelSession) Close() {
	s.doneOnce.Do(func() {
		close(s.done)
	})
}

// subscribers is the set of sessions watching one game.
type subscribers map[SessionID]SessionHandle

// live returns the number of sessions still open and forgets the closed ones.
func (subs subscribers) live() int {
	for id, s := range subs {
		select {
		case <-s.Done():
			delete(subs, id)
		default:
		}
	}
	return len(subs)
}

// broadcast sends evt to every live session and forgets the closed ones.
func (subs subscribers) broadcast(evt SessionEvent) {
	for id, s := range subs {
		select {
		case <-s.Done():
			delete(subs, id)
			continue
		default:
		}
		s.Send(evt)
	}
}
