// Package classify implements the keyword-heuristic intent and sentiment
// classifier. It satisfies contracts.Classifier so a model-backed
// implementation can replace it without touching the pipeline.
package classify

import (
	"fmt"
	"strings"

	"github.com/botfactory/botfactory/engine/pkg/models"
)

// negativeTokens and positiveTokens drive the sentiment score: each negative
// hit subtracts 0.2, each positive hit adds 0.2, clamped to [-1, 1].
var (
	negativeTokens = []string{
		"angry", "terrible", "awful", "hate", "worst", "useless",
		"broken", "scam", "refund", "cancel", "disappointed", "furious",
	}
	positiveTokens = []string{
		"thanks", "thank you", "great", "love", "awesome", "perfect",
		"amazing", "happy", "excellent", "wonderful",
	}
)

const sentimentStep = 0.2

// KeywordClassifier scores intents by the fraction of their keywords found in
// the message.
type KeywordClassifier struct{}

// New returns a KeywordClassifier.
func New() *KeywordClassifier { return &KeywordClassifier{} }

// Detect finds the best-matching intent and the message sentiment.
// Per-intent confidence is matched-keywords / total-keywords; the strictly
// highest score wins, ties resolved by declaration order; no keyword match
// anywhere yields an empty intent with confidence 0.
func (c *KeywordClassifier) Detect(bot *models.BotConfig, text string) models.Detection {
	lower := strings.ToLower(text)

	det := models.Detection{
		Sentiment: scoreSentiment(lower),
		Reason:    "no keyword match",
	}

	for _, intent := range bot.Intents {
		if len(intent.Keywords) == 0 {
			continue
		}
		hits := 0
		for _, kw := range intent.Keywords {
			if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
				hits++
			}
		}
		if hits == 0 {
			continue
		}
		score := float64(hits) / float64(len(intent.Keywords))
		if score > det.Confidence {
			det.IntentID = intent.ID
			det.Confidence = score
			det.Reason = fmt.Sprintf("matched %d/%d keywords for %s", hits, len(intent.Keywords), intent.Name)
		}
	}

	return det
}

// scoreSentiment counts token hits over the fixed lists. Each token counts
// once regardless of how often it appears.
func scoreSentiment(lower string) float64 {
	score := 0.0
	for _, tok := range negativeTokens {
		if strings.Contains(lower, tok) {
			score -= sentimentStep
		}
	}
	for _, tok := range positiveTokens {
		if strings.Contains(lower, tok) {
			score += sentimentStep
		}
	}
	return clamp(score, -1, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
