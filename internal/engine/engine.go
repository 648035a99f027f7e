// Package engine implements the message-handling pipeline: safety filter →
// classifier → escalation policy → rate limiter → channel dispatch, with a
// decision trace recorded for every branch taken.
package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/botfactory/botfactory/engine/internal/dispatch"
	"github.com/botfactory/botfactory/engine/internal/policy"
	"github.com/botfactory/botfactory/engine/internal/ratelimit"
	"github.com/botfactory/botfactory/engine/internal/runtime"
	"github.com/botfactory/botfactory/engine/internal/safety"
	"github.com/botfactory/botfactory/engine/internal/store"
	"github.com/botfactory/botfactory/engine/pkg/contracts"
	"github.com/botfactory/botfactory/engine/pkg/models"
)

// Decision reasons the pipeline records outside the policy and limiter.
const (
	ReasonSafetyBlocked        = "safety_blocked"
	ReasonNoIntentMatch        = "no_intent_match"
	ReasonNoReplyTemplate      = "no_reply_template"
	ReasonBotInactive          = "bot_inactive"
	ReasonChannelNotConfigured = "channel_not_configured"
)

// Engine orchestrates one inbound message end to end.
type Engine struct {
	store      store.Store
	classifier contracts.Classifier
	state      runtime.StateStore
	limiter    *ratelimit.Limiter
	dispatcher *dispatch.Dispatcher

	nowFn func() time.Time
}

// New wires the pipeline. The classifier and state store are injected so
// tests and future model-backed classifiers can swap them.
func New(s store.Store, classifier contracts.Classifier, state runtime.StateStore, dispatcher *dispatch.Dispatcher) *Engine {
	return &Engine{
		store:      s,
		classifier: classifier,
		state:      state,
		limiter:    ratelimit.NewLimiter(state),
		dispatcher: dispatcher,
		nowFn:      func() time.Time { return time.Now().UTC() },
	}
}

// HandleInboundMessage runs the pipeline for one message addressed to a bot
// and returns the recorded decision trace. Unknown bot ids fail with
// *store.ErrNotFound; every other outcome — escalation, rate limiting,
// dispatch failure — is a normal decision, not an error.
func (e *Engine) HandleInboundMessage(ctx context.Context, botID string, channel models.Channel, text string, meta map[string]string) (*models.DecisionTrace, error) {
	bot, err := e.store.GetBot(ctx, botID)
	if err != nil {
		return nil, err
	}
	now := e.nowFn()

	if !channel.Valid() || !bot.HasChannel(channel) {
		return e.record(ctx, bot.ID, models.DecisionTrace{
			Channel: channel,
			Input:   text,
			Action:  models.ActionIgnored,
			Reason:  ReasonChannelNotConfigured,
		})
	}
	if !bot.Active {
		return e.record(ctx, bot.ID, models.DecisionTrace{
			Channel: channel,
			Input:   text,
			Action:  models.ActionIgnored,
			Reason:  ReasonBotInactive,
		})
	}

	// 1. Safety filter. Blocked input never reaches the classifier.
	filtered := safety.Apply(text)
	if filtered.Blocked {
		log.Info().Str("bot", bot.ID).Strs("reasons", filtered.Reasons).Msg("Message blocked by safety filter")
		return e.record(ctx, bot.ID, models.DecisionTrace{
			Channel: channel,
			Input:   filtered.Sanitized,
			Action:  models.ActionIgnored,
			Reason:  ReasonSafetyBlocked,
		})
	}

	// 2. Classify the sanitized text.
	det := e.classifier.Detect(bot, filtered.Sanitized)

	// 3. The escalation policy reads the uncertainty accumulated from prior
	// messages; the counter is updated for the current one afterwards.
	lowConfidence := det.Confidence < policy.LowConfidenceThreshold
	prior := e.state.Snapshot(bot.ID, now).UncertainCount
	e.state.UpdateUncertain(bot.ID, lowConfidence)

	base := models.DecisionTrace{
		Channel:          channel,
		Input:            filtered.Sanitized,
		DetectedIntentID: det.IntentID,
		Confidence:       det.Confidence,
		Sentiment:        det.Sentiment,
	}

	// 4. Escalation policy. Handoff delivery itself is external.
	outcome := policy.Evaluate(bot.Escalation, det.Sentiment, det.Confidence, prior, det.IntentID)
	if outcome.Escalate {
		e.limiter.RecordDecision(bot.ID, models.ActionEscalate, now)
		base.Action = models.ActionEscalate
		base.Reason = outcome.Reason
		return e.record(ctx, bot.ID, base)
	}

	// 5. Rate limiter. Denied attempts are not counted toward future windows.
	if limit := e.limiter.Check(bot, now); !limit.Allowed {
		base.Action = models.ActionRateLimited
		base.Reason = limit.Reason
		return e.record(ctx, bot.ID, base)
	}

	// 6. Select the first reply template linked to the detected intent.
	if det.IntentID == "" {
		base.Action = models.ActionIgnored
		base.Reason = ReasonNoIntentMatch
		return e.record(ctx, bot.ID, base)
	}
	template := firstReply(bot, det.IntentID)
	if template == nil {
		base.Action = models.ActionIgnored
		base.Reason = ReasonNoReplyTemplate
		return e.record(ctx, bot.ID, base)
	}

	// 7. Dispatch. One attempt; failures land in the trace, not in err.
	result := e.dispatcher.Send(ctx, bot, channel, models.OutboundMessage{
		Body: template.BodyFor(channel),
		Meta: meta,
	})
	e.limiter.RecordDecision(bot.ID, models.ActionReply, now)

	base.Action = models.ActionReply
	base.ReplyTemplateID = template.ID
	if !result.OK {
		base.Reason = "dispatch_failed: " + result.Error
	}
	return e.record(ctx, bot.ID, base)
}

// record persists the trace and returns the stamped copy.
func (e *Engine) record(ctx context.Context, botID string, trace models.DecisionTrace) (*models.DecisionTrace, error) {
	recorded, err := e.store.RecordTrace(ctx, botID, trace)
	if err != nil {
		return nil, err
	}
	log.Debug().
		Str("bot", botID).
		Str("action", string(recorded.Action)).
		Str("reason", recorded.Reason).
		Msg("Decision recorded")
	return recorded, nil
}

// firstReply returns the first existing reply template linked to the intent.
func firstReply(bot *models.BotConfig, intentID string) *models.ReplyTemplate {
	intent := bot.FindIntent(intentID)
	if intent == nil {
		return nil
	}
	for _, id := range intent.ReplyTemplateIDs {
		if t := bot.FindReply(id); t != nil {
			return t
		}
	}
	return nil
}
