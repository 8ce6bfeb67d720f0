package mcpserver

import "github.com/mark3labs/mcp-go/mcp"

// Tool definitions for the ReplyPilot MCP server.
// Descriptions are what the LLM reads to decide which tool to use.

var ToolDraftReplies = mcp.NewTool("draft_review_replies",
	mcp.WithDescription(
		"Draft reply options for a customer review on behalf of the merchant. "+
			"Returns several ready-to-post variants in different styles (short, detailed, branded). "+
			"Each call spends one slot of the merchant's monthly quota."),
	mcp.WithString("review_text",
		mcp.Required(),
		mcp.Description("The customer's review text, verbatim")),
	mcp.WithNumber("rating",
		mcp.Required(),
		mcp.Description("Star rating from 1 to 5")),
	mcp.WithString("reviewer_name",
		mcp.Description("The reviewer's display name, if known")),
	mcp.WithString("platform",
		mcp.Description("Where the review was posted (e.g. 'google', 'yelp'). Defaults to 'google'.")),
	mcp.WithString("context",
		mcp.Description("Extra context about the visit or order, if any")),
)

var ToolGetUsage = mcp.NewTool("get_usage",
	mcp.WithDescription(
		"Check the merchant's reply-generation quota: subscription tier, "+
			"replies used this month, the monthly limit, and when the counter resets."),
)

var ToolGetProfile = mcp.NewTool("get_profile",
	mcp.WithDescription(
		"Get the merchant's business profile: name, business type, reply tone, "+
			"brand voice, and signature. Replies are drafted with these settings."),
)

var ToolUpdateProfile = mcp.NewTool("update_profile",
	mcp.WithDescription(
		"Update the merchant's reply settings. Only the provided fields change. "+
			"Subscription tier cannot be changed here."),
	mcp.WithString("business_name",
		mcp.Description("The business's display name")),
	mcp.WithString("business_type",
		mcp.Description("What kind of business this is (e.g. 'restaurant', 'dental clinic')")),
	mcp.WithString("tone",
		mcp.Description("Overall reply tone (e.g. 'professional', 'friendly', 'formal')")),
	mcp.WithString("brand_voice",
		mcp.Description("Free-text description of how the brand talks")),
	mcp.WithString("signature",
		mcp.Description("Sign-off appended to every reply (e.g. '- The Rosie's Team')")),
)
