package realtime

import (
	"sync"

	"github.com/rs/zerolog"

	"go-chatline/internal/infrastructure/metrics"
)

// Subscriber is one live endpoint that can receive room payloads.
type Subscriber interface {
	ID() string
	Send(payload []byte) error
}

// BroadcastResult reports the per-subscriber outcome of one fan-out.
type BroadcastResult struct {
	Delivered int
	Dropped   int
}

// Registry tracks which subscribers listen to which room.
// Broadcast sends to a snapshot taken under the read lock, so concurrent
// Subscribe/Unsubscribe never tear an in-flight fan-out; subscribers whose
// Send fails are removed afterwards.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]map[string]Subscriber // roomKey -> subscriberID -> subscriber
	log   zerolog.Logger
}

func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{
		rooms: make(map[string]map[string]Subscriber),
		log:   log.With().Str("component", "registry").Logger(),
	}
}

// Subscribe adds s to the room. It reports false when s was already subscribed.
func (r *Registry) Subscribe(roomKey string, s Subscriber) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	room := r.rooms[roomKey]
	if room == nil {
		room = make(map[string]Subscriber)
		r.rooms[roomKey] = room
	}
	if _, ok := room[s.ID()]; ok {
		return false
	}
	room[s.ID()] = s
	metrics.ActiveConnections.Inc()
	return true
}

// Unsubscribe removes s from the room. Unknown subscribers are ignored.
func (r *Registry) Unsubscribe(roomKey string, s Subscriber) {
	r.mu.Lock()
	r.removeLocked(roomKey, s)
	r.mu.Unlock()
}

// Broadcast delivers payload to every subscriber of the room. A failing
// subscriber never blocks the others and is dropped from the room.
func (r *Registry) Broadcast(roomKey string, payload []byte) BroadcastResult {
	r.mu.RLock()
	room := r.rooms[roomKey]
	snapshot := make([]Subscriber, 0, len(room))
	for _, s := range room {
		snapshot = append(snapshot, s)
	}
	r.mu.RUnlock()

	var res BroadcastResult
	var failed []Subscriber
	for _, s := range snapshot {
		if err := s.Send(payload); err != nil {
			failed = append(failed, s)
			r.log.Debug().Err(err).Str("room", roomKey).Str("subscriber", s.ID()).Msg("dropping unreachable subscriber")
			continue
		}
		res.Delivered++
	}

	if len(failed) > 0 {
		r.mu.Lock()
		for _, s := range failed {
			r.removeLocked(roomKey, s)
		}
		r.mu.Unlock()
	}
	res.Dropped = len(failed)
	metrics.RecordBroadcast(res.Delivered, res.Dropped)
	return res
}

// RoomSize returns the number of subscribers currently in the room.
func (r *Registry) RoomSize(roomKey string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[roomKey])
}

type closer interface {
	Close(code int, reason string)
}

// Close empties every room and closes subscribers that support it.
func (r *Registry) Close() {
	r.mu.Lock()
	var all []Subscriber
	for _, room := range r.rooms {
		for _, s := range room {
			all = append(all, s)
		}
		metrics.ActiveConnections.Sub(float64(len(room)))
	}
	r.rooms = make(map[string]map[string]Subscriber)
	r.mu.Unlock()

	for _, s := range all {
		if c, ok := s.(closer); ok {
			c.Close(1001, "server shutdown")
		}
	}
}

// removeLocked deletes s only if the room still holds that exact subscriber.
func (r *Registry) removeLocked(roomKey string, s Subscriber) {
	room := r.rooms[roomKey]
	if room == nil {
		return
	}
	current, ok := room[s.ID()]
	if !ok || current != s {
		return
	}
	delete(room, s.ID())
	metrics.ActiveConnections.Dec()
	if len(room) == 0 {
		delete(r.rooms, roomKey)
	}
}
