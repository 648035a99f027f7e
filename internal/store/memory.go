// Package store — in-memory Store implementation backed by a key-value JSON
// document snapshot. Used for local dev and tests; a PostgreSQL document
// store can be plugged in behind the same kv boundary.
package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/botfactory/botfactory/engine/internal/kv"
	"github.com/botfactory/botfactory/engine/pkg/models"
)

// snapshotKey is the document key the store persists under.
const snapshotKey = "botfactory/state"

// saveDebounce coalesces rapid writes into one document flush.
const saveDebounce = 500 * time.Millisecond

// snapshot is the JSON-serializable shape written to the document store.
type snapshot struct {
	Bots   map[string]*models.BotConfig `json:"bots"`
	Traces map[string]*traceRing        `json:"traces"` // key: bot id
}

// MemoryStore implements Store with in-memory maps and debounced snapshot
// persistence through a kv.Store.
type MemoryStore struct {
	mu     sync.RWMutex
	bots   map[string]*models.BotConfig // key: bot id
	traces map[string]*traceRing        // key: bot id

	docs      kv.Store
	saveCh    chan struct{}
	doneCh    chan struct{}
	closeOnce sync.Once

	// nowFn is swapped in tests to control timestamps.
	nowFn func() time.Time
}

// NewMemoryStore creates a store persisting through docs. Existing state is
// loaded from the snapshot document; pass nil docs to disable persistence.
func NewMemoryStore(docs kv.Store) *MemoryStore {
	m := &MemoryStore{
		bots:   make(map[string]*models.BotConfig),
		traces: make(map[string]*traceRing),
		docs:   docs,
		saveCh: make(chan struct{}, 1),
		doneCh: make(chan struct{}),
		nowFn:  func() time.Time { return time.Now().UTC() },
	}

	if m.docs != nil {
		m.loadSnapshot()
		go m.saveLoop()
	}

	return m
}

// ── Bot CRUD ────────────────────────────────────────────────

// ListBots returns all bots, filtered by client when clientID is non-empty.
func (m *MemoryStore) ListBots(_ context.Context, clientID string) ([]models.BotConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.BotConfig, 0, len(m.bots))
	for _, b := range m.bots {
		if clientID != "" && b.ClientID != clientID {
			continue
		}
		out = append(out, *b)
	}
	return out, nil
}

// GetBot returns a copy of the bot with the given id.
func (m *MemoryStore) GetBot(_ context.Context, id string) (*models.BotConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.bots[id]
	if !ok {
		return nil, &ErrNotFound{Entity: "bot", Key: id}
	}
	cp := *b
	return &cp, nil
}

// CreateBot assigns a new id and stores the bot at version 1, inactive.
func (m *MemoryStore) CreateBot(_ context.Context, input models.BotInput) (*models.BotConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.nowFn()
	bot := &models.BotConfig{
		ID:         uuid.New().String(),
		ClientID:   input.ClientID,
		Name:       input.NormalizedName(),
		Channels:   append([]models.Channel(nil), input.Channels...),
		Persona:    input.Persona,
		Guidelines: input.Guidelines,
		Intents:    append([]models.Intent(nil), input.Intents...),
		Replies:    append([]models.ReplyTemplate(nil), input.Replies...),
		Escalation: models.DefaultEscalationRules(),
		RateLimits: models.DefaultRateLimitRules(),
		Sandbox:    input.Sandbox,
		Active:     false,
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if input.Escalation != nil {
		bot.Escalation = *input.Escalation
	}
	if input.RateLimits != nil {
		bot.RateLimits = *input.RateLimits
	}

	m.bots[bot.ID] = bot
	m.requestSave()

	log.Info().Str("bot", bot.ID).Str("client", bot.ClientID).Str("name", bot.Name).Msg("Bot created")
	cp := *bot
	return &cp, nil
}

// UpdateBot shallow-merges the patch and bumps the version unconditionally.
func (m *MemoryStore) UpdateBot(_ context.Context, id string, patch models.BotPatch) (*models.BotConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	bot, ok := m.bots[id]
	if !ok {
		return nil, &ErrNotFound{Entity: "bot", Key: id}
	}
	if patch.ExpectedVersion != 0 && patch.ExpectedVersion != bot.Version {
		return nil, &ErrVersionConflict{BotID: id, Expected: patch.ExpectedVersion, Actual: bot.Version}
	}

	if patch.Name != nil {
		bot.Name = *patch.Name
	}
	if patch.Channels != nil {
		bot.Channels = *patch.Channels
	}
	if patch.Persona != nil {
		bot.Persona = *patch.Persona
	}
	if patch.Guidelines != nil {
		bot.Guidelines = *patch.Guidelines
	}
	if patch.Intents != nil {
		bot.Intents = *patch.Intents
	}
	if patch.Replies != nil {
		bot.Replies = *patch.Replies
	}
	if patch.Escalation != nil {
		bot.Escalation = *patch.Escalation
	}
	if patch.RateLimits != nil {
		bot.RateLimits = *patch.RateLimits
	}
	if patch.Sandbox != nil {
		bot.Sandbox = *patch.Sandbox
	}
	if patch.Active != nil {
		bot.Active = *patch.Active
	}

	bot.Version++
	bot.UpdatedAt = m.nowFn()
	m.requestSave()

	cp := *bot
	return &cp, nil
}

// DeleteBot removes the bot and its trace log.
func (m *MemoryStore) DeleteBot(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.bots[id]; !ok {
		return &ErrNotFound{Entity: "bot", Key: id}
	}
	delete(m.bots, id)
	delete(m.traces, id)
	m.requestSave()

	log.Info().Str("bot", id).Msg("Bot deleted")
	return nil
}

// ── Traces ──────────────────────────────────────────────────

// RecordTrace stamps the trace and appends it to the bot's ring buffer.
func (m *MemoryStore) RecordTrace(_ context.Context, botID string, trace models.DecisionTrace) (*models.DecisionTrace, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.bots[botID]; !ok {
		return nil, &ErrNotFound{Entity: "bot", Key: botID}
	}

	trace.At = m.nowFn()
	ring, ok := m.traces[botID]
	if !ok {
		ring = &traceRing{}
		m.traces[botID] = ring
	}
	ring.Push(trace)
	m.requestSave()

	return &trace, nil
}

// ListTraces returns the bot's traces oldest-first; never an error for a bot
// with no traces.
func (m *MemoryStore) ListTraces(_ context.Context, botID string) ([]models.DecisionTrace, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ring, ok := m.traces[botID]
	if !ok {
		return []models.DecisionTrace{}, nil
	}
	return ring.Items(), nil
}

// ── Lifecycle ───────────────────────────────────────────────

// Ping reports whether the store is usable.
func (m *MemoryStore) Ping(_ context.Context) error { return nil }

// Close stops the save loop and flushes a final snapshot. Safe to call more
// than once; only the first call does the work.
func (m *MemoryStore) Close() error {
	if m.docs == nil {
		return nil
	}
	var err error
	m.closeOnce.Do(func() {
		close(m.doneCh)
		m.saveSnapshot()
		err = m.docs.Close()
	})
	return err
}

// ── Snapshot persistence ────────────────────────────────────

// requestSave signals the background goroutine to persist. Non-blocking:
// coalesces rapid writes into one flush.
func (m *MemoryStore) requestSave() {
	if m.docs == nil {
		return
	}
	select {
	case m.saveCh <- struct{}{}:
	default:
		// Already pending
	}
}

// saveLoop debounces save requests.
func (m *MemoryStore) saveLoop() {
	for {
		select {
		case <-m.doneCh:
			return
		case <-m.saveCh:
			time.Sleep(saveDebounce)
			m.saveSnapshot()
		}
	}
}

func (m *MemoryStore) saveSnapshot() {
	m.mu.RLock()
	snap := snapshot{Bots: m.bots, Traces: m.traces}
	data, err := json.Marshal(&snap)
	m.mu.RUnlock()

	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal store snapshot")
		return
	}
	if err := m.docs.Write(context.Background(), snapshotKey, data); err != nil {
		log.Error().Err(err).Msg("Failed to persist store snapshot")
	}
}

func (m *MemoryStore) loadSnapshot() {
	data, err := m.docs.Read(context.Background(), snapshotKey, nil)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to read store snapshot, starting empty")
		return
	}
	if data == nil {
		return
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		log.Warn().Err(err).Msg("Corrupt store snapshot, starting empty")
		return
	}

	m.mu.Lock()
	if snap.Bots != nil {
		m.bots = snap.Bots
	}
	if snap.Traces != nil {
		m.traces = snap.Traces
	}
	m.mu.Unlock()

	log.Info().Int("bots", len(snap.Bots)).Msg("Store snapshot loaded")
}
