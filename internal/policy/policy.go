// Package policy decides whether a message is handed off to a human instead
// of auto-replied. Evaluation is a pure function over the classifier output
// and the bot's accumulated uncertainty.
package policy

import (
	"github.com/botfactory/botfactory/engine/pkg/models"
)

// LowConfidenceThreshold marks a classification as uncertain.
const LowConfidenceThreshold = 0.3

// Escalation reasons, in rule priority order.
const (
	ReasonNegativeSentiment    = "negative_sentiment"
	ReasonAlwaysEscalateIntent = "always_escalate_intent"
	ReasonLowConfidenceRepeat  = "low_confidence_repeat"
)

// Outcome is the escalation decision for one message.
type Outcome struct {
	Escalate bool   `json:"escalate"`
	Reason   string `json:"reason,omitempty"`
}

// Evaluate applies the escalation rules in fixed priority order; the first
// matching rule wins:
//
//  1. sentiment at or below the negative threshold
//  2. detected intent in the always-escalate set
//  3. low confidence with the uncertainty counter at or past its limit
//
// uncertainCount must be the count accumulated from prior messages, not
// including the current one.
func Evaluate(rules models.EscalationRules, sentiment, confidence float64, uncertainCount int, intentID string) Outcome {
	if sentiment <= rules.NegativeSentimentThreshold {
		return Outcome{Escalate: true, Reason: ReasonNegativeSentiment}
	}
	if rules.AlwaysEscalates(intentID) {
		return Outcome{Escalate: true, Reason: ReasonAlwaysEscalateIntent}
	}
	if confidence < LowConfidenceThreshold &&
		rules.MaxUncertainBeforeHandoff > 0 &&
		uncertainCount >= rules.MaxUncertainBeforeHandoff {
		return Outcome{Escalate: true, Reason: ReasonLowConfidenceRepeat}
	}
	return Outcome{}
}
