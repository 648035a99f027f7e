package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/smtp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/botfactory/botfactory/engine/pkg/contracts"
	"github.com/botfactory/botfactory/engine/pkg/models"
)

// PlatformConfig holds the endpoints the built-in drivers talk to. Empty
// endpoints leave the driver in an unconfigured state where sends fail with
// a result value, which is the expected posture outside production.
type PlatformConfig struct {
	FacebookEndpoint  string
	InstagramEndpoint string
	LinkedInEndpoint  string
	XEndpoint         string

	SMTPAddr string // host:port
	SMTPFrom string
}

// RegisterBuiltins registers one driver per supported channel.
func RegisterBuiltins(d *Dispatcher, cfg PlatformConfig) {
	client := &http.Client{Timeout: defaultSendTimeout}
	d.RegisterDriver(&socialDriver{channel: models.ChannelFacebook, endpoint: cfg.FacebookEndpoint, client: client})
	d.RegisterDriver(&socialDriver{channel: models.ChannelInstagram, endpoint: cfg.InstagramEndpoint, client: client})
	d.RegisterDriver(&socialDriver{channel: models.ChannelLinkedIn, endpoint: cfg.LinkedInEndpoint, client: client})
	d.RegisterDriver(&socialDriver{channel: models.ChannelX, endpoint: cfg.XEndpoint, client: client})
	d.RegisterDriver(&emailDriver{addr: cfg.SMTPAddr, from: cfg.SMTPFrom})
}

// ── Social platform driver ──────────────────────────────────

// socialDriver posts the outbound message as JSON to a platform endpoint.
// One instance serves one channel; the wire shape is identical across the
// social platforms.
type socialDriver struct {
	channel  models.Channel
	endpoint string
	client   *http.Client
}

var _ contracts.ChannelDriver = (*socialDriver)(nil)

func (s *socialDriver) Channel() models.Channel { return s.channel }

func (s *socialDriver) Send(ctx context.Context, bot *models.BotConfig, msg models.OutboundMessage) models.PostResult {
	if s.endpoint == "" {
		return models.PostResult{Error: string(s.channel) + " endpoint not configured"}
	}

	payload := map[string]interface{}{
		"post_id": uuid.New().String(),
		"bot_id":  bot.ID,
		"body":    msg.Body,
		"meta":    msg.Meta,
		"sent_at": time.Now().UTC().Format(time.RFC3339),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return models.PostResult{Error: "marshal payload: " + err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return models.PostResult{Error: "build request: " + err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "BotFactory-Dispatch/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return models.PostResult{Error: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.PostResult{Error: fmt.Sprintf("%s HTTP %d", s.channel, resp.StatusCode)}
	}
	return models.PostResult{OK: true, ID: payload["post_id"].(string)}
}

// ── Email driver ────────────────────────────────────────────

// emailDriver sends the reply over SMTP. The recipient comes from the
// message meta ("to"); without a configured SMTP address or a recipient the
// send fails as a result value.
type emailDriver struct {
	addr string
	from string
}

var _ contracts.ChannelDriver = (*emailDriver)(nil)

func (e *emailDriver) Channel() models.Channel { return models.ChannelEmail }

func (e *emailDriver) Send(_ context.Context, bot *models.BotConfig, msg models.OutboundMessage) models.PostResult {
	if e.addr == "" {
		return models.PostResult{Error: "smtp not configured"}
	}
	to := msg.Meta["to"]
	if to == "" {
		return models.PostResult{Error: "email recipient missing"}
	}

	id := uuid.New().String()
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", e.from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: Reply from %s\r\n", bot.Name)
	fmt.Fprintf(&b, "Message-Id: <%s@botfactory>\r\n", id)
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	b.WriteString("\r\n")

	if err := smtp.SendMail(e.addr, nil, e.from, []string{to}, []byte(b.String())); err != nil {
		return models.PostResult{Error: err.Error()}
	}
	return models.PostResult{OK: true, ID: id}
}
