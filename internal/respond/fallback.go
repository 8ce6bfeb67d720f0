package respond

import (
	"fmt"
	"strings"

	"github.com/replypilot/replypilot/internal/account"
)

// fallbackResponses builds deterministic template replies when the model
// output cannot be parsed. Always three variants, in the first three
// catalog styles, so the extension still has something to show.
func fallbackResponses(review Review, profile *account.Profile) []Response {
	sentiment := Classify(review.Rating)

	var detailed, branded string
	if sentiment == SentimentPositive {
		detailed = "We're thrilled"
		branded = "Your satisfaction is our priority and we hope to see you again soon!"
	} else {
		detailed = "We're sorry to hear about your experience and would love to make it right"
		branded = "We take all feedback seriously and would love the opportunity to improve. Please contact us directly."
	}

	return []Response{
		{
			Style: styleCatalog[0].name,
			Text: withSignature(fmt.Sprintf(
				"Thank you for your %d-star review! We appreciate your feedback.",
				review.Rating), profile.Signature),
		},
		{
			Style: styleCatalog[1].name,
			Text: withSignature(fmt.Sprintf(
				"Thank you for taking the time to share your experience at %s. %s.",
				profile.BusinessName, detailed), profile.Signature),
		},
		{
			Style: styleCatalog[2].name,
			Text:  withSignature("We appreciate your feedback. "+branded, profile.Signature),
		},
	}
}

func withSignature(text, signature string) string {
	if signature == "" {
		return text
	}
	return strings.TrimSpace(text) + " " + signature
}
