package respond

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/replypilot/replypilot/internal/account"
)

// mockProvider returns a canned completion or error.
type mockProvider struct {
	output string
	err    error

	mu     sync.Mutex
	calls  int
	prompt string
}

func (m *mockProvider) Complete(_ context.Context, prompt string, _ int) (string, error) {
	m.mu.Lock()
	m.calls++
	m.prompt = prompt
	m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	return m.output, nil
}

func (m *mockProvider) Name() string { return "mock" }

func testProfile() *account.Profile {
	return &account.Profile{
		ID:           "mer_1",
		BusinessName: "Rosie's Cafe",
		BusinessType: "restaurant",
		Tone:         "friendly",
		Signature:    "- Rosie",
		Tier:         account.TierFree,
	}
}

func TestGenerate_ParsedOutput(t *testing.T) {
	p := &mockProvider{output: `{"responses":[
		{"style":"Short & Sweet","text":"Thanks so much, Sam!"},
		{"style":"Detailed & Personal","text":"We loved having you."},
		{"style":"Professional & Branded","text":"Come back soon. - Rosie"}]}`}
	g := NewGenerator(p, 1000)

	review := Review{ReviewText: "Great!", Rating: 5, Platform: "google"}
	responses, err := g.Generate(context.Background(), review, testProfile(), 3)

	require.NoError(t, err)
	require.Len(t, responses, 3)
	assert.Equal(t, "Thanks so much, Sam!", responses[0].Text)
	assert.Equal(t, 1, p.calls, "exactly one provider call per review")
}

func TestGenerate_FallbackOnUnparseableOutput(t *testing.T) {
	p := &mockProvider{output: "Sure! Here are some ideas for replying:"}
	g := NewGenerator(p, 1000)

	review := Review{ReviewText: "Cold food.", Rating: 1, Platform: "google"}
	responses, err := g.Generate(context.Background(), review, testProfile(), 3)

	require.NoError(t, err, "unparseable output is not a failure")
	require.Len(t, responses, 3)
	assert.Equal(t, "Short & Sweet", responses[0].Style)
	assert.Contains(t, responses[0].Text, "1-star review")
	assert.Contains(t, responses[1].Text, "sorry to hear about your experience")
	assert.Contains(t, responses[2].Text, "contact us directly")
	for _, r := range responses {
		assert.Contains(t, r.Text, "- Rosie", "fallbacks carry the signature")
	}
}

func TestGenerate_FallbackPositiveTemplates(t *testing.T) {
	p := &mockProvider{output: "not json"}
	g := NewGenerator(p, 1000)

	review := Review{ReviewText: "Loved it", Rating: 5, Platform: "google"}
	responses, err := g.Generate(context.Background(), review, testProfile(), 3)

	require.NoError(t, err)
	assert.Contains(t, responses[1].Text, "We're thrilled")
	assert.Contains(t, responses[2].Text, "hope to see you again soon")
}

func TestGenerate_ProviderFailure(t *testing.T) {
	p := &mockProvider{err: errors.New("connection refused")}
	g := NewGenerator(p, 1000)

	review := Review{ReviewText: "Great!", Rating: 5, Platform: "google"}
	_, err := g.Generate(context.Background(), review, testProfile(), 3)

	assert.ErrorIs(t, err, ErrGenerationFailed)
}

func TestGenerate_PromptCarriesVariantCount(t *testing.T) {
	p := &mockProvider{output: `{"responses":[{"style":"s","text":"t"}]}`}
	g := NewGenerator(p, 1000)

	profile := testProfile()
	profile.Tier = account.TierEnterprise
	review := Review{ReviewText: "Great!", Rating: 4, Platform: "google"}

	_, err := g.Generate(context.Background(), review, profile, 5)
	require.NoError(t, err)
	assert.Contains(t, p.prompt, "Generate 5 different response options")
}
