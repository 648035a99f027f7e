package ratelimit_test

import (
	"testing"
	"time"

	"github.com/botfactory/botfactory/engine/internal/ratelimit"
	"github.com/botfactory/botfactory/engine/internal/runtime"
	"github.com/botfactory/botfactory/engine/pkg/models"
)

func limitedBot(rules models.RateLimitRules) *models.BotConfig {
	return &models.BotConfig{ID: "bot-1", RateLimits: rules}
}

func TestCheck_PerMinuteWindow(t *testing.T) {
	state := runtime.NewMemoryStateStore()
	l := ratelimit.NewLimiter(state)
	bot := limitedBot(models.RateLimitRules{PerMinute: 3})
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		now := base.Add(time.Duration(i) * time.Second)
		if res := l.Check(bot, now); !res.Allowed {
			t.Fatalf("Check() at +%ds denied: %+v", i, res)
		}
		l.RecordDecision(bot.ID, models.ActionReply, now)
	}

	res := l.Check(bot, base.Add(3*time.Second))
	if res.Allowed || res.Reason != ratelimit.ReasonPerMinute {
		t.Errorf("Check() after 3 decisions = %+v, want perMinute denial", res)
	}

	// One minute after the first decision the window slides open again.
	if res := l.Check(bot, base.Add(61*time.Second)); !res.Allowed {
		t.Errorf("Check() after window slid = %+v, want allowed", res)
	}
}

func TestCheck_PerHourWindow(t *testing.T) {
	state := runtime.NewMemoryStateStore()
	l := ratelimit.NewLimiter(state)
	bot := limitedBot(models.RateLimitRules{PerHour: 2})
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Spread decisions out so the minute window never trips.
	l.RecordDecision(bot.ID, models.ActionReply, base)
	l.RecordDecision(bot.ID, models.ActionReply, base.Add(10*time.Minute))

	res := l.Check(bot, base.Add(20*time.Minute))
	if res.Allowed || res.Reason != ratelimit.ReasonPerHour {
		t.Errorf("Check() = %+v, want perHour denial", res)
	}

	if res := l.Check(bot, base.Add(61*time.Minute)); !res.Allowed {
		t.Errorf("Check() after hour window slid = %+v, want allowed", res)
	}
}

func TestCheck_PerDayWindow(t *testing.T) {
	state := runtime.NewMemoryStateStore()
	l := ratelimit.NewLimiter(state)
	bot := limitedBot(models.RateLimitRules{PerDay: 2})
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	l.RecordDecision(bot.ID, models.ActionReply, base)
	l.RecordDecision(bot.ID, models.ActionReply, base.Add(6*time.Hour))

	res := l.Check(bot, base.Add(12*time.Hour))
	if res.Allowed || res.Reason != ratelimit.ReasonPerDay {
		t.Errorf("Check() = %+v, want perDay denial", res)
	}

	// The first decision ages out of the 24h retention window.
	if res := l.Check(bot, base.Add(25*time.Hour)); !res.Allowed {
		t.Errorf("Check() after day window slid = %+v, want allowed", res)
	}
}

func TestCheck_Cooldown(t *testing.T) {
	state := runtime.NewMemoryStateStore()
	l := ratelimit.NewLimiter(state)
	bot := limitedBot(models.RateLimitRules{PerMinute: 10, CooldownMs: 5000})
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	l.RecordDecision(bot.ID, models.ActionEscalate, base)

	res := l.Check(bot, base.Add(3*time.Second))
	if res.Allowed || res.Reason != ratelimit.ReasonCooldown {
		t.Errorf("Check() inside cooldown = %+v, want cooldown denial", res)
	}

	if res := l.Check(bot, base.Add(5*time.Second)); !res.Allowed {
		t.Errorf("Check() at cooldown expiry = %+v, want allowed", res)
	}
}

func TestCheck_ZeroRulesUnlimited(t *testing.T) {
	state := runtime.NewMemoryStateStore()
	l := ratelimit.NewLimiter(state)
	bot := limitedBot(models.RateLimitRules{})
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 100; i++ {
		now := base.Add(time.Duration(i) * time.Millisecond)
		if res := l.Check(bot, now); !res.Allowed {
			t.Fatalf("Check() with zero rules denied at %d: %+v", i, res)
		}
		l.RecordDecision(bot.ID, models.ActionReply, now)
	}
}

func TestCheck_MinuteOutranksHour(t *testing.T) {
	state := runtime.NewMemoryStateStore()
	l := ratelimit.NewLimiter(state)
	bot := limitedBot(models.RateLimitRules{PerMinute: 1, PerHour: 1})
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	l.RecordDecision(bot.ID, models.ActionReply, base)

	res := l.Check(bot, base.Add(time.Second))
	if res.Reason != ratelimit.ReasonPerMinute {
		t.Errorf("Reason = %q, want perMinute checked first", res.Reason)
	}
}
