package dispatch_test

import (
	"context"
	"strings"
	"testing"

	"github.com/botfactory/botfactory/engine/internal/dispatch"
	"github.com/botfactory/botfactory/engine/pkg/models"
)

// mockDriver records the last message it was asked to send.
type mockDriver struct {
	channel models.Channel
	result  models.PostResult

	calls int
	last  models.OutboundMessage
}

func (m *mockDriver) Channel() models.Channel { return m.channel }

func (m *mockDriver) Send(_ context.Context, _ *models.BotConfig, msg models.OutboundMessage) models.PostResult {
	m.calls++
	m.last = msg
	return m.result
}

func TestSend_RoutesToRegisteredDriver(t *testing.T) {
	d := dispatch.NewDispatcher()
	drv := &mockDriver{channel: models.ChannelFacebook, result: models.PostResult{OK: true, ID: "fb-1"}}
	d.RegisterDriver(drv)

	bot := &models.BotConfig{ID: "bot-1"}
	res := d.Send(context.Background(), bot, models.ChannelFacebook, models.OutboundMessage{Body: "hi"})

	if !res.OK || res.ID != "fb-1" {
		t.Errorf("Send() = %+v, want driver result", res)
	}
	if drv.calls != 1 || drv.last.Body != "hi" {
		t.Errorf("driver calls = %d, last = %+v", drv.calls, drv.last)
	}
}

func TestSend_SandboxSkipsDriver(t *testing.T) {
	d := dispatch.NewDispatcher()
	drv := &mockDriver{channel: models.ChannelFacebook, result: models.PostResult{OK: true}}
	d.RegisterDriver(drv)

	bot := &models.BotConfig{ID: "bot-1", Sandbox: true}
	res := d.Send(context.Background(), bot, models.ChannelFacebook, models.OutboundMessage{Body: "hi"})

	if !res.OK || !res.Sandbox {
		t.Errorf("Send() = %+v, want sandbox acknowledgement", res)
	}
	if !strings.HasPrefix(res.ID, "sandbox-") {
		t.Errorf("ID = %q, want sandbox- prefix", res.ID)
	}
	if drv.calls != 0 {
		t.Errorf("driver called %d times for a sandbox bot", drv.calls)
	}
}

func TestSend_NoDriverRegistered(t *testing.T) {
	d := dispatch.NewDispatcher()
	bot := &models.BotConfig{ID: "bot-1"}

	res := d.Send(context.Background(), bot, models.ChannelEmail, models.OutboundMessage{Body: "hi"})
	if res.OK {
		t.Error("Send() succeeded with no driver")
	}
	if !strings.Contains(res.Error, "no driver registered") {
		t.Errorf("Error = %q", res.Error)
	}
}

func TestSend_FailureIsResultNotError(t *testing.T) {
	d := dispatch.NewDispatcher()
	d.RegisterDriver(&mockDriver{
		channel: models.ChannelX,
		result:  models.PostResult{Error: "upstream 503"},
	})

	bot := &models.BotConfig{ID: "bot-1"}
	res := d.Send(context.Background(), bot, models.ChannelX, models.OutboundMessage{Body: "hi"})
	if res.OK || res.Error != "upstream 503" {
		t.Errorf("Send() = %+v, want failure passthrough", res)
	}
}

func TestRegisterDriver_ReplacesExisting(t *testing.T) {
	d := dispatch.NewDispatcher()
	first := &mockDriver{channel: models.ChannelX}
	second := &mockDriver{channel: models.ChannelX, result: models.PostResult{OK: true, ID: "second"}}
	d.RegisterDriver(first)
	d.RegisterDriver(second)

	res := d.Send(context.Background(), &models.BotConfig{}, models.ChannelX, models.OutboundMessage{})
	if res.ID != "second" {
		t.Errorf("Send() routed to %q, want replacement driver", res.ID)
	}
	if first.calls != 0 {
		t.Error("replaced driver still receiving sends")
	}
}
