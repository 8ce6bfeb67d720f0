// Package respond drafts review reply options for a merchant. It turns a
// customer review plus the merchant's profile into a handful of
// ready-to-post reply variants, each in a named style.
package respond

import "errors"

// ErrGenerationFailed means the LLM provider could not produce any text.
// Malformed provider output is not a failure; it falls back to templates.
var ErrGenerationFailed = errors.New("respond: generation failed")

// Sentiment buckets a review by its star rating.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Classify maps a 1-5 star rating to a sentiment. Four stars and up is
// positive, two and below negative, three neutral.
func Classify(rating int) Sentiment {
	switch {
	case rating >= 4:
		return SentimentPositive
	case rating <= 2:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// Review is a customer review scraped by the browser extension.
type Review struct {
	ReviewText   string `json:"reviewText"`
	Rating       int    `json:"rating"`
	ReviewerName string `json:"reviewerName,omitempty"`
	Platform     string `json:"platform,omitempty"`
	Context      string `json:"context,omitempty"`
}

// DefaultPlatform is assumed when the extension does not say where the
// review came from.
const DefaultPlatform = "google"

// ApplyDefaults fills in the optional review fields.
func (r *Review) ApplyDefaults() {
	if r.Platform == "" {
		r.Platform = DefaultPlatform
	}
}

// Response is one drafted reply variant.
type Response struct {
	Style string `json:"style"`
	Text  string `json:"text"`
}

// Result is what a merchant gets back for one review.
type Result struct {
	Responses      []Response `json:"responses"`
	UsageRemaining int        `json:"usageRemaining"`
}
