// Package store provides the Bot Configuration Store: durable CRUD for bot
// configurations and append-only decision trace logs, keyed by bot id.
// All handler and engine code depends on the Store interface, so the backing
// document store can be swapped without touching callers.
package store

import (
	"context"
	"strconv"

	"github.com/botfactory/botfactory/engine/pkg/models"
)

// Store is the primary storage interface for the engine.
type Store interface {
	BotStore
	TraceStore

	// Ping checks that the backing document store is reachable.
	Ping(ctx context.Context) error

	// Close flushes pending writes and releases resources.
	Close() error
}

// BotStore manages bot configuration records.
type BotStore interface {
	// ListBots returns all bots, filtered by owning client when clientID is
	// non-empty.
	ListBots(ctx context.Context, clientID string) ([]models.BotConfig, error)

	// GetBot returns the bot with the given id, or *ErrNotFound.
	GetBot(ctx context.Context, id string) (*models.BotConfig, error)

	// CreateBot assigns a new id, version 1, active=false, and timestamps.
	// The name is trimmed; an empty name is accepted (validation is a caller
	// concern).
	CreateBot(ctx context.Context, input models.BotInput) (*models.BotConfig, error)

	// UpdateBot shallow-merges the patch into the stored record, bumps
	// UpdatedAt and increments Version by 1 regardless of whether fields
	// actually changed. Returns *ErrNotFound for unknown ids and
	// *ErrVersionConflict when the patch carries a stale ExpectedVersion.
	UpdateBot(ctx context.Context, id string, patch models.BotPatch) (*models.BotConfig, error)

	// DeleteBot removes a bot and its traces. Returns *ErrNotFound for
	// unknown ids.
	DeleteBot(ctx context.Context, id string) error
}

// TraceStore manages per-bot decision trace logs.
type TraceStore interface {
	// RecordTrace stamps At=now and appends the trace to the bot's log,
	// evicting the oldest entry once the per-bot cap is reached. Returns
	// *ErrNotFound for unknown bot ids.
	RecordTrace(ctx context.Context, botID string, trace models.DecisionTrace) (*models.DecisionTrace, error)

	// ListTraces returns the bot's traces in insertion order. A bot with no
	// traces yet yields an empty list, not an error.
	ListTraces(ctx context.Context, botID string) ([]models.DecisionTrace, error)
}

// ── Errors ──────────────────────────────────────────────────

// ErrNotFound is returned when a requested entity does not exist.
type ErrNotFound struct {
	Entity string
	Key    string
}

func (e *ErrNotFound) Error() string {
	return e.Entity + " not found: " + e.Key
}

// ErrVersionConflict is returned when an update carries an ExpectedVersion
// that no longer matches the stored record.
type ErrVersionConflict struct {
	BotID    string
	Expected int
	Actual   int
}

func (e *ErrVersionConflict) Error() string {
	return "bot " + e.BotID + " version conflict: expected " +
		strconv.Itoa(e.Expected) + ", have " + strconv.Itoa(e.Actual)
}
