// Package contracts defines the pluggable service interfaces of the Bot
// Factory engine. The orchestration pipeline depends only on these
// interfaces, so implementations can be swapped (a model-backed classifier,
// real platform drivers) without touching callers.
package contracts

import (
	"context"

	"github.com/botfactory/botfactory/engine/pkg/models"
)

// Classifier maps message text to a best-matching intent, a confidence in
// [0,1], and a sentiment score in [-1,1]. Implementations never fail: absence
// of an intent match is a valid result with confidence 0.
type Classifier interface {
	Detect(bot *models.BotConfig, text string) models.Detection
}

// ChannelDriver performs the channel-specific send for one platform.
// Send never returns a Go error: failures are reported through
// PostResult.Error so the pipeline can record them in the decision trace.
type ChannelDriver interface {
	// Channel returns the channel this driver serves.
	Channel() models.Channel

	// Send delivers the message on behalf of the bot.
	Send(ctx context.Context, bot *models.BotConfig, msg models.OutboundMessage) models.PostResult
}
