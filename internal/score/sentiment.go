package score

import "strings"

// Small polarity lexicons for perspective sentiment. Coverage is thin on
// purpose; headlines are short and a neutral default is the right prior.
var positiveWords = map[string]bool{
	"recover": true, "recovery": true, "rescue": true, "rescued": true,
	"success": true, "successful": true, "peace": true, "agreement": true,
	"breakthrough": true, "improve": true, "improved": true, "growth": true,
	"win": true, "wins": true, "won": true, "aid": true, "relief": true,
	"survivors": true, "reunited": true, "celebrates": true, "progress": true,
	"stabilize": true, "stabilized": true, "ceasefire": true,
}

var negativeWords = map[string]bool{
	"dead": true, "deaths": true, "killed": true, "kills": true, "dies": true,
	"crisis": true, "disaster": true, "destroyed": true, "destruction": true,
	"attack": true, "attacks": true, "victims": true, "fears": true,
	"threat": true, "collapse": true, "outbreak": true, "catastrophe": true,
	"devastating": true, "casualties": true, "missing": true, "injured": true,
	"warns": true, "warning": true, "failure": true, "fraud": true,
	"violence": true, "escalates": true, "toll": true,
}

// Sentiment buckets.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// Sentiment computes mean token polarity over a set of texts and buckets
// it. The threshold is low; one strong word in a headline is signal.
func Sentiment(texts []string) string {
	score := 0
	for _, text := range texts {
		for _, tok := range strings.Fields(strings.ToLower(text)) {
			tok = strings.Trim(tok, `.,;:!?"'()`)
			if positiveWords[tok] {
				score++
			} else if negativeWords[tok] {
				score--
			}
		}
	}
	switch {
	case score > 0:
		return SentimentPositive
	case score < 0:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}
