package classify_test

import (
	"testing"

	"github.com/botfactory/botfactory/engine/internal/classify"
	"github.com/botfactory/botfactory/engine/pkg/models"
)

func testBot(intents ...models.Intent) *models.BotConfig {
	return &models.BotConfig{ID: "bot-1", Intents: intents}
}

func TestDetect_PartialKeywordMatch(t *testing.T) {
	bot := testBot(models.Intent{
		ID:       "pricing",
		Name:     "Pricing",
		Keywords: []string{"pricing", "cost"},
	})

	det := classify.New().Detect(bot, "What does it cost?")
	if det.IntentID != "pricing" {
		t.Fatalf("IntentID = %q, want pricing", det.IntentID)
	}
	if det.Confidence != 0.5 {
		t.Errorf("Confidence = %v, want 0.5 (1 of 2 keywords)", det.Confidence)
	}
}

func TestDetect_HighestScoreWins(t *testing.T) {
	bot := testBot(
		models.Intent{ID: "broad", Keywords: []string{"order", "shipping", "delivery", "refund"}},
		models.Intent{ID: "narrow", Keywords: []string{"shipping"}},
	)

	// "shipping" scores 1/4 for broad and 1/1 for narrow.
	det := classify.New().Detect(bot, "where is my shipping update")
	if det.IntentID != "narrow" {
		t.Errorf("IntentID = %q, want narrow", det.IntentID)
	}
	if det.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want 1.0", det.Confidence)
	}
}

func TestDetect_TieKeepsFirstDeclared(t *testing.T) {
	bot := testBot(
		models.Intent{ID: "first", Keywords: []string{"hours"}},
		models.Intent{ID: "second", Keywords: []string{"hours"}},
	)

	det := classify.New().Detect(bot, "what are your hours")
	if det.IntentID != "first" {
		t.Errorf("IntentID = %q, want first (declaration order breaks ties)", det.IntentID)
	}
}

func TestDetect_NoMatch(t *testing.T) {
	bot := testBot(models.Intent{ID: "pricing", Keywords: []string{"pricing", "cost"}})

	det := classify.New().Detect(bot, "hello there")
	if det.IntentID != "" {
		t.Errorf("IntentID = %q, want empty", det.IntentID)
	}
	if det.Confidence != 0 {
		t.Errorf("Confidence = %v, want 0", det.Confidence)
	}
	if det.Reason != "no keyword match" {
		t.Errorf("Reason = %q", det.Reason)
	}
}

func TestDetect_CaseInsensitiveKeywords(t *testing.T) {
	bot := testBot(models.Intent{ID: "pricing", Keywords: []string{"Pricing"}})

	det := classify.New().Detect(bot, "PRICING question")
	if det.IntentID != "pricing" {
		t.Errorf("IntentID = %q, want pricing", det.IntentID)
	}
}

func TestDetect_Sentiment(t *testing.T) {
	c := classify.New()
	tests := []struct {
		text string
		want float64
	}{
		{"thanks, this is great", 0.4},
		{"this is terrible and awful", -0.4},
		{"no opinion words here", 0},
		// Repeats count once per token.
		{"hate hate hate", -0.2},
	}
	for _, tt := range tests {
		det := c.Detect(testBot(), tt.text)
		if det.Sentiment != tt.want {
			t.Errorf("Sentiment(%q) = %v, want %v", tt.text, det.Sentiment, tt.want)
		}
	}
}

func TestDetect_SentimentClamped(t *testing.T) {
	text := "angry terrible awful hate worst useless broken scam refund cancel disappointed furious"
	det := classify.New().Detect(testBot(), text)
	if det.Sentiment != -1 {
		t.Errorf("Sentiment = %v, want clamp at -1", det.Sentiment)
	}
}
