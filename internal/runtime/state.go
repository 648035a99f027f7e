// Package runtime holds the per-bot mutable runtime state the decision
// engine accumulates between messages: recent decision timestamps, the last
// escalation time, and the consecutive-uncertainty counter.
//
// State is process-local and created lazily on a bot's first message; it is
// reset by a process restart. That is a known limitation of the current
// design. The StateStore interface is injected into the pipeline so tests
// can supply isolated instances.
package runtime

import (
	"sync"
	"time"

	"github.com/botfactory/botfactory/engine/pkg/models"
)

// window is how long decision timestamps are retained.
const window = 24 * time.Hour

// State is a point-in-time copy of one bot's runtime state.
type State struct {
	// Timestamps holds the bot's recent decision times, pruned to the last
	// 24 hours, oldest first.
	Timestamps []time.Time

	// LastEscalation is zero when the bot has never escalated.
	LastEscalation time.Time

	// UncertainCount is the number of consecutive low-confidence messages
	// seen so far.
	UncertainCount int
}

// StateStore tracks runtime state keyed by bot id. Implementations must be
// safe for concurrent use.
type StateStore interface {
	// Snapshot prunes timestamps older than 24 hours relative to now and
	// returns a copy of the bot's state.
	Snapshot(botID string, now time.Time) State

	// RecordDecision appends now to the bot's decision timestamps and, for
	// escalations, stamps LastEscalation. Only terminal non-rate-limited
	// decisions should be recorded.
	RecordDecision(botID string, action models.DecisionAction, now time.Time)

	// UpdateUncertain increments the uncertainty counter when lowConfidence
	// is true and resets it to zero otherwise, returning the new count.
	UpdateUncertain(botID string, lowConfidence bool) int

	// Reset drops all state for the bot.
	Reset(botID string)
}

// botState is the mutable record behind the store.
type botState struct {
	timestamps     []time.Time
	lastEscalation time.Time
	uncertainCount int
}

// MemoryStateStore is the in-memory StateStore implementation.
type MemoryStateStore struct {
	mu    sync.Mutex
	state map[string]*botState
}

// NewMemoryStateStore creates an empty state store.
func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{state: make(map[string]*botState)}
}

// get returns the bot's state, creating it lazily. Callers hold s.mu.
func (s *MemoryStateStore) get(botID string) *botState {
	st, ok := s.state[botID]
	if !ok {
		st = &botState{}
		s.state[botID] = st
	}
	return st
}

// Snapshot prunes and copies the bot's state.
func (s *MemoryStateStore) Snapshot(botID string, now time.Time) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.get(botID)
	st.prune(now)

	out := State{
		Timestamps:     make([]time.Time, len(st.timestamps)),
		LastEscalation: st.lastEscalation,
		UncertainCount: st.uncertainCount,
	}
	copy(out.Timestamps, st.timestamps)
	return out
}

// RecordDecision appends the decision time and tracks escalations.
func (s *MemoryStateStore) RecordDecision(botID string, action models.DecisionAction, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.get(botID)
	st.prune(now)
	st.timestamps = append(st.timestamps, now)
	if action == models.ActionEscalate {
		st.lastEscalation = now
	}
}

// UpdateUncertain bumps or resets the consecutive-uncertainty counter.
func (s *MemoryStateStore) UpdateUncertain(botID string, lowConfidence bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.get(botID)
	if lowConfidence {
		st.uncertainCount++
	} else {
		st.uncertainCount = 0
	}
	return st.uncertainCount
}

// Reset drops all state for the bot.
func (s *MemoryStateStore) Reset(botID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.state, botID)
}

// prune drops timestamps older than the retention window.
func (st *botState) prune(now time.Time) {
	cutoff := now.Add(-window)
	i := 0
	for i < len(st.timestamps) && !st.timestamps[i].After(cutoff) {
		i++
	}
	if i > 0 {
		st.timestamps = append([]time.Time(nil), st.timestamps[i:]...)
	}
}
