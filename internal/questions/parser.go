package questions

import (
	"encoding/json"
	"strings"
)

// ParseCandidates decodes the extraction response. Anything that is not
// valid JSON in the expected envelope yields zero candidates; a bad model
// response is a quality problem, not a pipeline failure.
func ParseCandidates(raw string, max int) []Candidate {
	raw = stripCodeFence(raw)
	if raw == "" {
		return nil
	}
	var payload struct {
		Questions []Candidate `json:"questions"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil
	}
	out := payload.Questions
	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return out
}

// ParseFixes decodes the repair response. Fixes without an index are
// dropped since they cannot be matched back to a record.
func ParseFixes(raw string) []Fix {
	raw = stripCodeFence(raw)
	if raw == "" {
		return nil
	}
	var payload struct {
		Fixes []Fix `json:"fixes"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil
	}
	out := make([]Fix, 0, len(payload.Fixes))
	for _, f := range payload.Fixes {
		if f.Index == nil {
			continue
		}
		out = append(out, f)
	}
	return out
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}
