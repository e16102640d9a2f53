package poker

import (
	"sync"

	"github.com/rs/zerolog"

	"scrumpoker/internal/pkg/logx"
)

// Registry is the single shared mutable resource of the process: the map of
// all rooms, guarded by one reader/writer lock. Every state-changing
// operation (admission, retirement, any dispatched command) runs under the
// write lock for its full duration, including the broadcast fan-out that
// follows the mutation. This serializes all writes across every room;
// correctness over throughput, which the naturally small concurrent-write
// rate of a room makes a fine trade.
//
// Rooms are never removed. A room created for a token stays in the registry
// until the process exits.
type Registry struct {
	mu     sync.RWMutex
	rooms  map[RoomToken]*Room
	logger zerolog.Logger
}

func NewRegistry() *Registry {
	return &Registry{
		rooms:  make(map[RoomToken]*Room),
		logger: logx.Logger().With().Str("component", "Registry").Logger(),
	}
}

// UpdateOrCreate runs fn on the room for the given token under the write
// lock, creating the room first if this is the first connection to it.
func (g *Registry) UpdateOrCreate(token RoomToken, fn func(*Room)) {
	g.mu.Lock()
	defer g.mu.Unlock()

	room, ok := g.rooms[token]
	if !ok {
		room = newRoom(token)
		g.rooms[token] = room
		g.logger.Info().Str("room_token", string(token)).Msg("Room created")
	}
	fn(room)
}

// Update runs fn on the room for the given token under the write lock. If
// no such room exists the call is a no-op.
func (g *Registry) Update(token RoomToken, fn func(*Room)) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if room, ok := g.rooms[token]; ok {
		fn(room)
	}
}

// View runs fn on the room under the read lock. fn must not mutate the
// room or send to any participant.
func (g *Registry) View(token RoomToken, fn func(*Room)) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if room, ok := g.rooms[token]; ok {
		fn(room)
	}
}

// Len reports the number of rooms ever created in this process.
func (g *Registry) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rooms)
}
