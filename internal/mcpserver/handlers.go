package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// Handlers holds the handler functions for each MCP tool.
type Handlers struct {
	client *ReplyPilotClient
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(client *ReplyPilotClient) *Handlers {
	return &Handlers{client: client}
}

// HandleDraftReplies drafts reply variants for one review.
func (h *Handlers) HandleDraftReplies(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	reviewText := req.GetString("review_text", "")
	if reviewText == "" {
		return mcp.NewToolResultError("review_text is required"), nil
	}
	rating := req.GetInt("rating", 0)
	if rating < 1 || rating > 5 {
		return mcp.NewToolResultError("rating must be between 1 and 5"), nil
	}

	body := map[string]any{
		"reviewText": reviewText,
		"rating":     rating,
	}
	if v := req.GetString("reviewer_name", ""); v != "" {
		body["reviewerName"] = v
	}
	if v := req.GetString("platform", ""); v != "" {
		body["platform"] = v
	}
	if v := req.GetString("context", ""); v != "" {
		body["context"] = v
	}

	raw, err := h.client.GenerateReplies(ctx, body)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to draft replies: %v", err)), nil
	}

	text, err := formatReplies(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse replies: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// HandleGetUsage reports quota usage.
func (h *Handlers) HandleGetUsage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := h.client.GetUsage(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get usage: %v", err)), nil
	}

	text, err := formatUsage(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse usage: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// HandleGetProfile returns the merchant profile.
func (h *Handlers) HandleGetProfile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := h.client.GetProfile(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get profile: %v", err)), nil
	}

	text, err := formatProfile(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse profile: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// HandleUpdateProfile patches the merchant profile.
func (h *Handlers) HandleUpdateProfile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	updates := map[string]any{}
	for argName, field := range map[string]string{
		"business_name": "businessName",
		"business_type": "businessType",
		"tone":          "tone",
		"brand_voice":   "brandVoice",
		"signature":     "signature",
	} {
		if v, ok := req.GetArguments()[argName]; ok {
			if s, ok := v.(string); ok {
				updates[field] = s
			}
		}
	}
	if len(updates) == 0 {
		return mcp.NewToolResultError("provide at least one field to update"), nil
	}

	if _, err := h.client.UpdateProfile(ctx, updates); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to update profile: %v", err)), nil
	}

	raw, err := h.client.GetProfile(ctx)
	if err != nil {
		return mcp.NewToolResultText("Profile updated."), nil
	}
	text, err := formatProfile(raw)
	if err != nil {
		return mcp.NewToolResultText("Profile updated."), nil
	}
	return mcp.NewToolResultText("Profile updated.\n\n" + text), nil
}

// --- Formatting helpers ---

func formatReplies(raw json.RawMessage) (string, error) {
	var result struct {
		Responses []struct {
			Style string `json:"style"`
			Text  string `json:"text"`
		} `json:"responses"`
		UsageRemaining int `json:"usageRemaining"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", err
	}

	var sb strings.Builder
	for i, r := range result.Responses {
		fmt.Fprintf(&sb, "%d. %s\n%s\n\n", i+1, r.Style, r.Text)
	}
	if result.UsageRemaining >= 0 {
		fmt.Fprintf(&sb, "Quota remaining this month: %d", result.UsageRemaining)
	} else {
		sb.WriteString("Quota remaining this month: unlimited")
	}
	return sb.String(), nil
}

func formatUsage(raw json.RawMessage) (string, error) {
	var usage struct {
		Tier         string          `json:"tier"`
		UsageCount   int             `json:"usageCount"`
		MonthlyLimit json.RawMessage `json:"monthlyLimit"`
		ResetDate    string          `json:"resetDate"`
	}
	if err := json.Unmarshal(raw, &usage); err != nil {
		return "", err
	}

	limit := strings.Trim(string(usage.MonthlyLimit), `"`)
	var sb strings.Builder
	fmt.Fprintf(&sb, "Tier: %s\n", usage.Tier)
	fmt.Fprintf(&sb, "Replies used this month: %d of %s\n", usage.UsageCount, limit)
	if usage.ResetDate != "" {
		fmt.Fprintf(&sb, "Counter resets: %s", usage.ResetDate)
	}
	return sb.String(), nil
}

func formatProfile(raw json.RawMessage) (string, error) {
	var profile struct {
		BusinessName string `json:"businessName"`
		BusinessType string `json:"businessType"`
		Tone         string `json:"tone"`
		BrandVoice   string `json:"brandVoice"`
		Signature    string `json:"signature"`
		Tier         string `json:"subscriptionTier"`
	}
	if err := json.Unmarshal(raw, &profile); err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Business: %s (%s)\n", profile.BusinessName, profile.BusinessType)
	fmt.Fprintf(&sb, "Tone: %s\n", profile.Tone)
	if profile.BrandVoice != "" {
		fmt.Fprintf(&sb, "Brand voice: %s\n", profile.BrandVoice)
	}
	if profile.Signature != "" {
		fmt.Fprintf(&sb, "Signature: %s\n", profile.Signature)
	}
	fmt.Fprintf(&sb, "Tier: %s", profile.Tier)
	return sb.String(), nil
}
