package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/replypilot/replypilot/internal/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// mockLLM implements provider.Client for testing
type mockLLM struct {
	output string
	err    error
}

func (m *mockLLM) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.output, nil
}

func (m *mockLLM) Name() string { return "mock" }

const mockOutput = `{"responses":[
{"style":"Short & Sweet","text":"Thanks so much!"},
{"style":"Detailed & Personal","text":"We really appreciate you taking the time to write this."},
{"style":"Professional & Branded","text":"Thank you for choosing us."}
]}`

// testConfig returns a minimal config for testing
func testConfig() *config.Config {
	return &config.Config{
		Port:            "0",
		Env:             "development",
		LogLevel:        "error",
		AnthropicAPIKey: "test-key",
		MaxOutputTokens: 1000,
		RateLimitRPM:    10000,
	}
}

// newTestServer creates a server with in-memory storage and a mock LLM
func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := New(testConfig(), WithProvider(&mockLLM{output: mockOutput}))
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	return s
}

// register creates a merchant and returns its API key
func register(t *testing.T, s *Server, body string) string {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/v1/accounts", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	key, _ := resp["apiKey"].(string)
	if key == "" {
		t.Fatal("Expected apiKey in registration response")
	}
	return key
}

// ---------------------------------------------------------------------------
// Health endpoint tests
// ---------------------------------------------------------------------------

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health", nil)
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if resp["status"] != "healthy" {
		t.Errorf("Expected status 'healthy', got %v", resp["status"])
	}
}

func TestLivenessEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health/live", nil)
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
}

func TestReadinessEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health/ready", nil)
	s.router.ServeHTTP(w, req)

	// Server hasn't called Run() so ready is false
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 (not ready), got %d", w.Code)
	}
}

// ---------------------------------------------------------------------------
// Route registration tests
// ---------------------------------------------------------------------------

func TestCoreRoutesRegistered(t *testing.T) {
	s := newTestServer(t)

	routes := s.router.Routes()
	expected := []string{
		"GET:/health",
		"GET:/health/live",
		"GET:/health/ready",
		"GET:/metrics",
		"POST:/v1/accounts",
		"GET:/v1/profile",
		"PATCH:/v1/profile",
		"GET:/v1/usage",
		"POST:/v1/upgrade",
		"POST:/v1/responses",
		"POST:/v1/billing/checkout",
		"POST:/v1/billing/webhook",
		"GET:/v1/auth/keys",
		"POST:/v1/auth/keys",
		"DELETE:/v1/auth/keys/:keyId",
	}

	routeSet := make(map[string]bool)
	for _, route := range routes {
		routeSet[route.Method+":"+route.Path] = true
	}

	for _, e := range expected {
		if !routeSet[e] {
			t.Errorf("Route %s not registered", e)
		}
	}
}

// ---------------------------------------------------------------------------
// Service info test
// ---------------------------------------------------------------------------

func TestInfoEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if resp["service"] != "ReplyPilot API" {
		t.Errorf("Expected service 'ReplyPilot API', got %v", resp["service"])
	}
}

// ---------------------------------------------------------------------------
// Registration and authenticated flow
// ---------------------------------------------------------------------------

func TestMerchantRegistration(t *testing.T) {
	s := newTestServer(t)

	key := register(t, s, `{"businessName":"Rosie's Cafe","businessType":"coffee shop"}`)
	if !strings.HasPrefix(key, "rk_") {
		t.Errorf("Expected key with rk_ prefix, got %q", key)
	}
}

func TestAuthenticatedProfileAccess(t *testing.T) {
	s := newTestServer(t)
	key := register(t, s, `{"businessName":"Rosie's Cafe","businessType":"coffee shop","tone":"friendly"}`)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/v1/profile", nil)
	req.Header.Set("Authorization", "Bearer "+key)
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if resp["businessName"] != "Rosie's Cafe" {
		t.Errorf("Expected businessName 'Rosie's Cafe', got %v", resp["businessName"])
	}
	if resp["tone"] != "friendly" {
		t.Errorf("Expected tone 'friendly', got %v", resp["tone"])
	}
}

func TestGenerateRepliesEndToEnd(t *testing.T) {
	s := newTestServer(t)
	key := register(t, s, `{"businessName":"Rosie's Cafe","businessType":"coffee shop"}`)

	body := `{"reviewText":"Best flat white in town!","rating":5,"reviewerName":"Dana"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/v1/responses", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+key)
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	responses, ok := resp["responses"].([]interface{})
	if !ok || len(responses) != 3 {
		t.Fatalf("Expected 3 responses, got %v", resp["responses"])
	}
	if resp["usageRemaining"] != float64(9) {
		t.Errorf("Expected usageRemaining 9, got %v", resp["usageRemaining"])
	}
}

func TestUnauthenticatedRequestRejected(t *testing.T) {
	s := newTestServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/v1/usage", nil)
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", w.Code)
	}
}

// ---------------------------------------------------------------------------
// 404 test
// ---------------------------------------------------------------------------

func TestNotFoundRoute(t *testing.T) {
	s := newTestServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/v1/nonexistent", nil)
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}
