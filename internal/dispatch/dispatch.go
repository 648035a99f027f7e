// Package dispatch delivers replies over channel drivers. One driver exists
// per channel (facebook, instagram, linkedin, x, email); adding a channel is
// a single new ChannelDriver implementation, not a multi-site edit.
//
// All drivers share a base behavior owned by the Dispatcher: bots in sandbox
// mode never reach a driver — the send is acknowledged locally with a
// generated id and no external call.
package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/botfactory/botfactory/engine/pkg/contracts"
	"github.com/botfactory/botfactory/engine/pkg/models"
)

// defaultSendTimeout bounds one channel send. A timeout is a dispatch
// failure, not a retry: each message is attempted exactly once.
const defaultSendTimeout = 15 * time.Second

// Dispatcher routes sends to the driver registered for each channel.
type Dispatcher struct {
	mu          sync.RWMutex
	drivers     map[models.Channel]contracts.ChannelDriver
	sendTimeout time.Duration
}

// NewDispatcher creates a dispatcher with no drivers registered.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		drivers:     make(map[models.Channel]contracts.ChannelDriver),
		sendTimeout: defaultSendTimeout,
	}
}

// RegisterDriver adds or replaces the driver for its channel.
func (d *Dispatcher) RegisterDriver(driver contracts.ChannelDriver) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.drivers[driver.Channel()] = driver
	log.Info().Str("channel", string(driver.Channel())).Msg("Registered channel driver")
}

// Driver returns the driver for a channel, or nil.
func (d *Dispatcher) Driver(c models.Channel) contracts.ChannelDriver {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.drivers[c]
}

// Send delivers msg on the given channel for the bot. Sandbox bots are
// acknowledged without any external call. Failures are returned as result
// values, never errors.
func (d *Dispatcher) Send(ctx context.Context, bot *models.BotConfig, channel models.Channel, msg models.OutboundMessage) models.PostResult {
	if bot.Sandbox {
		return models.PostResult{OK: true, Sandbox: true, ID: "sandbox-" + uuid.New().String()}
	}

	driver := d.Driver(channel)
	if driver == nil {
		return models.PostResult{Error: "no driver registered for channel " + string(channel)}
	}

	ctx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	result := driver.Send(ctx, bot, msg)
	if !result.OK {
		log.Warn().Str("bot", bot.ID).Str("channel", string(channel)).Str("error", result.Error).Msg("Channel send failed")
	}
	return result
}
