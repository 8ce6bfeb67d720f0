package respond

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/replypilot/replypilot/internal/account"
)

const validOutput = `{"responses":[
	{"style":"Short & Sweet","text":"Thanks!"},
	{"style":"Detailed & Personal","text":"Thank you so much."},
	{"style":"Professional & Branded","text":"See you soon."}]}`

func setupService(p *mockProvider) (*Service, *account.MemoryStore) {
	store := account.NewMemoryStore()
	svc := NewService(store, NewGenerator(p, 1000))
	return svc, store
}

func seedProfile(t *testing.T, store *account.MemoryStore, tier account.Tier, usage int) {
	t.Helper()
	reset := time.Now().Add(account.UsagePeriod)
	err := store.Create(context.Background(), &account.Profile{
		ID:           "mer_1",
		BusinessName: "Rosie's Cafe",
		BusinessType: "restaurant",
		Tone:         "friendly",
		Tier:         tier,
		UsageCount:   usage,
		UsageResetAt: &reset,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	})
	require.NoError(t, err)
}

func testReview() Review {
	return Review{ReviewText: "Great coffee!", Rating: 5}
}

func TestRespond_Success(t *testing.T) {
	svc, store := setupService(&mockProvider{output: validOutput})
	seedProfile(t, store, account.TierFree, 4)

	result, err := svc.Respond(context.Background(), "mer_1", testReview())
	require.NoError(t, err)
	assert.Len(t, result.Responses, 3)
	assert.Equal(t, 5, result.UsageRemaining, "quota 10 minus 4 used minus this one")

	profile, _ := store.Get(context.Background(), "mer_1")
	assert.Equal(t, 5, profile.UsageCount)
}

func TestRespond_DefaultsPlatform(t *testing.T) {
	p := &mockProvider{output: validOutput}
	svc, store := setupService(p)
	seedProfile(t, store, account.TierFree, 0)

	_, err := svc.Respond(context.Background(), "mer_1", Review{ReviewText: "Nice", Rating: 4})
	require.NoError(t, err)
	assert.Contains(t, p.prompt, "on google")
}

func TestRespond_QuotaExceeded(t *testing.T) {
	svc, store := setupService(&mockProvider{output: validOutput})
	seedProfile(t, store, account.TierFree, 10)

	_, err := svc.Respond(context.Background(), "mer_1", testReview())
	assert.ErrorIs(t, err, account.ErrQuotaExceeded)

	profile, _ := store.Get(context.Background(), "mer_1")
	assert.Equal(t, 10, profile.UsageCount, "rejected request is not charged")
}

func TestRespond_RolloverPersistsOnRejection(t *testing.T) {
	p := &mockProvider{err: errors.New("down")}
	svc, store := setupService(p)

	expired := time.Now().Add(-time.Hour)
	_ = store.Create(context.Background(), &account.Profile{
		ID: "mer_1", BusinessName: "B", BusinessType: "t", Tone: "warm",
		Tier: account.TierFree, UsageCount: 10, UsageResetAt: &expired,
	})

	// Provider is down, so the request fails after the rollover.
	_, err := svc.Respond(context.Background(), "mer_1", testReview())
	assert.ErrorIs(t, err, ErrGenerationFailed)

	profile, _ := store.Get(context.Background(), "mer_1")
	assert.Equal(t, 0, profile.UsageCount, "elapsed window resets the counter even on failure")
	assert.True(t, profile.UsageResetAt.After(time.Now()), "new window was persisted")
}

func TestRespond_ProviderFailureNotCharged(t *testing.T) {
	svc, store := setupService(&mockProvider{err: errors.New("timeout")})
	seedProfile(t, store, account.TierFree, 4)

	_, err := svc.Respond(context.Background(), "mer_1", testReview())
	assert.ErrorIs(t, err, ErrGenerationFailed)

	profile, _ := store.Get(context.Background(), "mer_1")
	assert.Equal(t, 4, profile.UsageCount)
}

func TestRespond_FallbackIsCharged(t *testing.T) {
	svc, store := setupService(&mockProvider{output: "not json at all"})
	seedProfile(t, store, account.TierFree, 4)

	result, err := svc.Respond(context.Background(), "mer_1", testReview())
	require.NoError(t, err)
	assert.Len(t, result.Responses, 3)

	profile, _ := store.Get(context.Background(), "mer_1")
	assert.Equal(t, 5, profile.UsageCount, "fallback drafts charge like parsed ones")
}

func TestRespond_EnterpriseUnlimited(t *testing.T) {
	p := &mockProvider{output: validOutput}
	svc, store := setupService(p)
	seedProfile(t, store, account.TierEnterprise, 99999)

	result, err := svc.Respond(context.Background(), "mer_1", testReview())
	require.NoError(t, err)
	assert.Equal(t, account.UnlimitedRemaining, result.UsageRemaining)
	assert.Contains(t, p.prompt, "Generate 5 different response options")
}

func TestRespond_UnknownMerchant(t *testing.T) {
	svc, _ := setupService(&mockProvider{output: validOutput})

	_, err := svc.Respond(context.Background(), "mer_ghost", testReview())
	assert.ErrorIs(t, err, account.ErrProfileNotFound)
}

func TestRespond_ConcurrentRequestsCannotOverspend(t *testing.T) {
	svc, store := setupService(&mockProvider{output: validOutput})
	seedProfile(t, store, account.TierFree, 0)

	const workers = 25
	var wg sync.WaitGroup
	var mu sync.Mutex
	successes, rejections := 0, 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Respond(context.Background(), "mer_1", testReview())
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, account.ErrQuotaExceeded):
				rejections++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, successes, "free tier allows exactly its quota")
	assert.Equal(t, workers-10, rejections)

	profile, _ := store.Get(context.Background(), "mer_1")
	assert.Equal(t, 10, profile.UsageCount)
}
