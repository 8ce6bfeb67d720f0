package respond

import (
	"fmt"
	"strings"

	"github.com/replypilot/replypilot/internal/account"
)

// styleCatalog is the ordered list of reply styles. A prompt asks for the
// first N of these, so three-variant tiers always get the same three
// styles and higher tiers extend the list rather than replace it.
var styleCatalog = []struct {
	name string
	hint string
}{
	{"Short & Sweet", "(1-2 sentences) - Quick, warm acknowledgment"},
	{"Detailed & Personal", "(3-4 sentences) - Shows you read and care"},
	{"Professional & Branded", "(2-3 sentences with subtle CTA)"},
	{"Warm & Conversational", "(2-3 sentences) - Friendly, like talking to a regular"},
	{"Concise & Direct", "(1 sentence) - Straight to the point"},
}

// MaxVariants is the largest variant count any tier can ask for.
var MaxVariants = len(styleCatalog)

// StyleNames returns the style names for the first n catalog entries.
func StyleNames(n int) []string {
	if n > MaxVariants {
		n = MaxVariants
	}
	names := make([]string, n)
	for i := 0; i < n; i++ {
		names[i] = styleCatalog[i].name
	}
	return names
}

// BuildPrompt renders the single-turn generation prompt for one review.
// The model is told to answer with bare JSON so the parser can take the
// output as-is.
func BuildPrompt(review Review, profile *account.Profile, variantCount int) string {
	if variantCount < 1 {
		variantCount = 1
	}
	if variantCount > MaxVariants {
		variantCount = MaxVariants
	}

	sentiment := Classify(review.Rating)

	reviewer := review.ReviewerName
	if reviewer == "" {
		reviewer = "customer"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are responding to a %s review for %s, a %s.\n\n",
		sentiment, profile.BusinessName, profile.BusinessType)
	fmt.Fprintf(&b, "Review (%d stars) from %s on %s:\n%q\n",
		review.Rating, reviewer, review.Platform, review.ReviewText)
	if review.Context != "" {
		fmt.Fprintf(&b, "\nAdditional context: %s\n", review.Context)
	}
	if profile.BrandVoice != "" {
		fmt.Fprintf(&b, "\nBrand Voice: %s\n", profile.BrandVoice)
	}
	if profile.Signature != "" {
		fmt.Fprintf(&b, "\nAlways end with: %s\n", profile.Signature)
	}

	fmt.Fprintf(&b, "\nGenerate %d different response options with a %s tone:\n\n",
		variantCount, profile.Tone)
	for i := 0; i < variantCount; i++ {
		fmt.Fprintf(&b, "%d. %s %s\n", i+1, styleCatalog[i].name, styleCatalog[i].hint)
	}

	b.WriteString(`
IMPORTANT RULES:
- For negative reviews: Acknowledge issue, apologize sincerely, offer solution
- For positive reviews: Thank genuinely, reinforce specific points they mentioned
- Match the energy level of the review
- Never be defensive or robotic
- Include specific details from their review

Return ONLY valid JSON with no markdown formatting:
{
  "responses": [
`)
	for i := 0; i < variantCount; i++ {
		fmt.Fprintf(&b, "    {\"style\": %q, \"text\": \"response here\"}", styleCatalog[i].name)
		if i < variantCount-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("  ]\n}")

	return b.String()
}
