// Package session maps a conversation onto one persistent pair of
// {world, discovery tracker}. The store is an explicit object the
// caller constructs and owns — creation, lookup, and eviction policy
// live with the caller, not in package state.
package session

import (
	"fmt"
	"hash/fnv"

	"github.com/praxislabs/gauntlet/pkg/discovery"
	"github.com/praxislabs/gauntlet/pkg/world"
)

// State is one play-through's mutable state.
type State struct {
	World   *world.World
	Tracker *discovery.Tracker
}

// Store lazily creates session state per key. It performs no locking:
// the engine contract is one utterance at a time per session.
type Store struct {
	seed     func() *world.World
	sessions map[string]*State
}

// NewStore creates a store that seeds fresh sessions with the given
// factory. A nil factory uses the embedded scenario seed.
func NewStore(seed func() *world.World) *Store {
	if seed == nil {
		seed = world.MustSeed
	}
	return &Store{seed: seed, sessions: map[string]*State{}}
}

// KeyFor derives a stable session key from the first message of a
// conversation, so repeated calls within one play-through share state.
func KeyFor(firstMessage string) string {
	h := fnv.New64a()
	h.Write([]byte(firstMessage))
	return fmt.Sprintf("sess-%016x", h.Sum64())
}

// Get returns the session for a key, creating it on first access.
func (s *Store) Get(key string) *State {
	if st, ok := s.sessions[key]; ok {
		return st
	}
	st := &State{World: s.seed(), Tracker: discovery.NewTracker()}
	s.sessions[key] = st
	return st
}

// Reset discards the session for a key, if any.
func (s *Store) Reset(key string) {
	delete(s.sessions, key)
}

// Len reports how many sessions are live.
func (s *Store) Len() int {
	return len(s.sessions)
}
