// Package ratelimit enforces per-bot sliding-window traffic budgets:
// per-minute, per-hour, and per-day decision counts, plus an optional
// cooldown after an escalation.
package ratelimit

import (
	"time"

	"github.com/botfactory/botfactory/engine/internal/runtime"
	"github.com/botfactory/botfactory/engine/pkg/models"
)

// Deny reasons, in check order.
const (
	ReasonPerMinute = "perMinute"
	ReasonPerHour   = "perHour"
	ReasonPerDay    = "perDay"
	ReasonCooldown  = "cooldown"
)

// Result reports whether a decision may proceed.
type Result struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// Limiter checks bot traffic against its configured budgets using the
// injected runtime state.
type Limiter struct {
	state runtime.StateStore
}

// NewLimiter creates a limiter over the given state store.
func NewLimiter(state runtime.StateStore) *Limiter {
	return &Limiter{state: state}
}

// Check evaluates the bot's windows in fixed order — minute, hour, day,
// cooldown — and returns on the first violation.
func (l *Limiter) Check(bot *models.BotConfig, now time.Time) Result {
	st := l.state.Snapshot(bot.ID, now)
	rules := bot.RateLimits

	if rules.PerMinute > 0 && countSince(st.Timestamps, now.Add(-time.Minute)) >= rules.PerMinute {
		return Result{Reason: ReasonPerMinute}
	}
	if rules.PerHour > 0 && countSince(st.Timestamps, now.Add(-time.Hour)) >= rules.PerHour {
		return Result{Reason: ReasonPerHour}
	}
	if rules.PerDay > 0 && len(st.Timestamps) >= rules.PerDay {
		return Result{Reason: ReasonPerDay}
	}
	if rules.CooldownMs > 0 && !st.LastEscalation.IsZero() {
		if now.Sub(st.LastEscalation) < time.Duration(rules.CooldownMs)*time.Millisecond {
			return Result{Reason: ReasonCooldown}
		}
	}

	return Result{Allowed: true}
}

// RecordDecision counts a terminal decision toward future windows. Callers
// must not record rate-limited or ignored outcomes.
func (l *Limiter) RecordDecision(botID string, action models.DecisionAction, now time.Time) {
	l.state.RecordDecision(botID, action, now)
}

// countSince counts timestamps strictly within the window starting at since.
// Timestamps are oldest-first, so scan from the back.
func countSince(timestamps []time.Time, since time.Time) int {
	n := 0
	for i := len(timestamps) - 1; i >= 0; i-- {
		if timestamps[i].Before(since) {
			break
		}
		n++
	}
	return n
}
