// Package models defines the domain types shared across the Bot Factory
// engine: bot configurations, intents, reply templates, escalation and rate
// limit rules, and decision traces.
package models

import (
	"strings"
	"time"
)

// ── Channels ─────────────────────────────────────────────────

// Channel identifies a delivery platform a bot can listen and reply on.
type Channel string

const (
	ChannelFacebook  Channel = "facebook"
	ChannelInstagram Channel = "instagram"
	ChannelLinkedIn  Channel = "linkedin"
	ChannelX         Channel = "x"
	ChannelEmail     Channel = "email"
)

// AllChannels lists every supported channel, in declaration order.
var AllChannels = []Channel{
	ChannelFacebook,
	ChannelInstagram,
	ChannelLinkedIn,
	ChannelX,
	ChannelEmail,
}

// Valid reports whether c is a known channel.
func (c Channel) Valid() bool {
	for _, known := range AllChannels {
		if c == known {
			return true
		}
	}
	return false
}

// ── Bot configuration ────────────────────────────────────────

// BotConfig is the full configuration of one automated responder.
// It is owned by the configuration store: the decision engine reads it but
// never mutates it.
type BotConfig struct {
	ID       string `json:"id"`
	ClientID string `json:"client_id"`
	Name     string `json:"name"`

	Channels   []Channel `json:"channels"`
	Persona    string    `json:"persona,omitempty"`
	Guidelines string    `json:"guidelines,omitempty"`

	Intents []Intent        `json:"intents"`
	Replies []ReplyTemplate `json:"replies"`

	Escalation EscalationRules `json:"escalation_rules"`
	RateLimits RateLimitRules  `json:"rate_limits"`

	Sandbox bool `json:"sandbox"`
	Active  bool `json:"active"`

	// Version increases by exactly 1 on every successful update.
	Version int `json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasChannel reports whether the bot is configured for the given channel.
func (b *BotConfig) HasChannel(c Channel) bool {
	for _, ch := range b.Channels {
		if ch == c {
			return true
		}
	}
	return false
}

// FindIntent returns the intent with the given id, or nil.
func (b *BotConfig) FindIntent(id string) *Intent {
	for i := range b.Intents {
		if b.Intents[i].ID == id {
			return &b.Intents[i]
		}
	}
	return nil
}

// FindReply returns the reply template with the given id, or nil.
func (b *BotConfig) FindReply(id string) *ReplyTemplate {
	for i := range b.Replies {
		if b.Replies[i].ID == id {
			return &b.Replies[i]
		}
	}
	return nil
}

// Intent is a named category of user request recognized via keyword matching.
type Intent struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Keywords         []string `json:"keywords"`
	ReplyTemplateIDs []string `json:"reply_template_ids"`
}

// ReplyTemplate is a canned response, optionally specialized per channel.
type ReplyTemplate struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Body  string `json:"body"`

	// ChannelOverrides holds per-channel body variants. Absent channels fall
	// back to Body.
	ChannelOverrides map[Channel]string `json:"channel_overrides,omitempty"`
}

// BodyFor returns the body to send on the given channel, preferring the
// channel override when present.
func (t *ReplyTemplate) BodyFor(c Channel) string {
	if body, ok := t.ChannelOverrides[c]; ok && body != "" {
		return body
	}
	return t.Body
}

// EscalationRules controls when a conversation is handed off to a human.
type EscalationRules struct {
	// NegativeSentimentThreshold is in [-1, 0]; sentiment at or below it
	// escalates immediately.
	NegativeSentimentThreshold float64 `json:"negative_sentiment_threshold"`

	// MaxUncertainBeforeHandoff is the number of consecutive low-confidence
	// messages tolerated before a low-confidence message escalates.
	MaxUncertainBeforeHandoff int `json:"max_uncertain_before_handoff"`

	// AlwaysEscalateIntents lists intent ids that bypass auto-reply.
	AlwaysEscalateIntents []string `json:"always_escalate_intents,omitempty"`

	// HumanInboxAddress is where escalated conversations are routed.
	HumanInboxAddress string `json:"human_inbox_address,omitempty"`
}

// AlwaysEscalates reports whether the intent id is in the always-escalate set.
func (r EscalationRules) AlwaysEscalates(intentID string) bool {
	if intentID == "" {
		return false
	}
	for _, id := range r.AlwaysEscalateIntents {
		if id == intentID {
			return true
		}
	}
	return false
}

// RateLimitRules bounds per-bot reply traffic.
type RateLimitRules struct {
	PerMinute int `json:"per_minute"`
	PerHour   int `json:"per_hour"`
	PerDay    int `json:"per_day"`

	// CooldownMs pauses the bot for this many milliseconds after an
	// escalation. Zero disables the cooldown.
	CooldownMs int64 `json:"cooldown_ms,omitempty"`
}

// DefaultEscalationRules are applied to newly created bots.
func DefaultEscalationRules() EscalationRules {
	return EscalationRules{
		NegativeSentimentThreshold: -0.6,
		MaxUncertainBeforeHandoff:  3,
	}
}

// DefaultRateLimitRules are applied to newly created bots.
func DefaultRateLimitRules() RateLimitRules {
	return RateLimitRules{
		PerMinute: 6,
		PerHour:   60,
		PerDay:    300,
	}
}

// ── Patches ──────────────────────────────────────────────────

// BotPatch is a shallow-merge update: nil fields are left untouched.
type BotPatch struct {
	Name       *string          `json:"name,omitempty"`
	Channels   *[]Channel       `json:"channels,omitempty"`
	Persona    *string          `json:"persona,omitempty"`
	Guidelines *string          `json:"guidelines,omitempty"`
	Intents    *[]Intent        `json:"intents,omitempty"`
	Replies    *[]ReplyTemplate `json:"replies,omitempty"`
	Escalation *EscalationRules `json:"escalation_rules,omitempty"`
	RateLimits *RateLimitRules  `json:"rate_limits,omitempty"`
	Sandbox    *bool            `json:"sandbox,omitempty"`
	Active     *bool            `json:"active,omitempty"`

	// ExpectedVersion, when non-zero, makes the update fail with a version
	// conflict if the stored bot is not at that version.
	ExpectedVersion int `json:"expected_version,omitempty"`
}

// BotInput is the payload accepted when creating a bot. Validation (empty
// name, no channels) is a caller concern; the store accepts what it is given
// beyond trimming the name.
type BotInput struct {
	ClientID   string           `json:"client_id"`
	Name       string           `json:"name"`
	Channels   []Channel        `json:"channels"`
	Persona    string           `json:"persona,omitempty"`
	Guidelines string           `json:"guidelines,omitempty"`
	Intents    []Intent         `json:"intents"`
	Replies    []ReplyTemplate  `json:"replies"`
	Escalation *EscalationRules `json:"escalation_rules,omitempty"`
	RateLimits *RateLimitRules  `json:"rate_limits,omitempty"`
	Sandbox    bool             `json:"sandbox"`
}

// NormalizedName returns the trimmed bot name.
func (in BotInput) NormalizedName() string {
	return strings.TrimSpace(in.Name)
}

// ── Decisions ────────────────────────────────────────────────

// DecisionAction is the terminal outcome of handling one inbound message.
type DecisionAction string

const (
	ActionReply       DecisionAction = "reply"
	ActionEscalate    DecisionAction = "escalate"
	ActionRateLimited DecisionAction = "rate_limited"
	ActionIgnored     DecisionAction = "ignored"
)

// DecisionTrace is the audit record of one message-handling outcome.
type DecisionTrace struct {
	At      time.Time `json:"at"`
	Channel Channel   `json:"channel"`

	// Input is the raw text after safety filtering.
	Input string `json:"input"`

	DetectedIntentID string  `json:"detected_intent_id,omitempty"`
	Confidence       float64 `json:"confidence"`
	Sentiment        float64 `json:"sentiment"`

	Action          DecisionAction `json:"action"`
	Reason          string         `json:"reason,omitempty"`
	ReplyTemplateID string         `json:"reply_template_id,omitempty"`
}

// Detection is the classifier output for one message.
type Detection struct {
	// IntentID is empty when no intent keyword matched.
	IntentID   string  `json:"intent_id,omitempty"`
	Confidence float64 `json:"confidence"`
	Sentiment  float64 `json:"sentiment"`
	Reason     string  `json:"reason,omitempty"`
}

// ── Dispatch ─────────────────────────────────────────────────

// OutboundMessage is the payload handed to a channel driver.
type OutboundMessage struct {
	Body string            `json:"body"`
	Meta map[string]string `json:"meta,omitempty"`
}

// PostResult is the outcome of a channel send. Failed sends are values, not
// errors: OK is false and Error carries the cause.
type PostResult struct {
	OK      bool   `json:"ok"`
	Sandbox bool   `json:"sandbox,omitempty"`
	ID      string `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`
}
