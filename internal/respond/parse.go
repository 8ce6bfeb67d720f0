package respond

import (
	"encoding/json"
	"strings"
)

// parseResponses extracts reply variants from raw model output. Models
// sometimes wrap JSON in markdown code fences despite instructions, so
// fences are stripped before parsing. Returns ok=false when the text is
// not the expected shape; the caller falls back to templates.
func parseResponses(raw string) ([]Response, bool) {
	clean := strings.ReplaceAll(raw, "```json", "")
	clean = strings.ReplaceAll(clean, "```", "")
	clean = strings.TrimSpace(clean)

	var parsed struct {
		Responses []Response `json:"responses"`
	}
	if err := json.Unmarshal([]byte(clean), &parsed); err != nil {
		return nil, false
	}
	if len(parsed.Responses) == 0 {
		return nil, false
	}

	for _, r := range parsed.Responses {
		if strings.TrimSpace(r.Text) == "" {
			return nil, false
		}
	}

	return parsed.Responses, true
}
