package uplink

import (
	"encoding/json"
	"strings"

	"sparkos/internal/logging"
)

// =============================================================================
// COMMAND EXTRACTION
// =============================================================================
// Model replies are free prose that may embed a single JSON command object.
// The JSON is rarely alone: it arrives wrapped in markdown fences, preceded by
// narration, or followed by a sign-off. Regex over nested braces is not
// reliable, so extraction runs a small byte-level scanner that tracks brace
// depth and string state to find balanced {...} spans, then parses the first
// span that carries an "action" key.

// Command is a structured directive embedded in a model reply. Data holds the
// action-specific payload and is decoded lazily by the applier.
type Command struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

// ExtractCommand scans raw model output for an embedded command. The second
// return is false when the reply is pure prose.
func ExtractCommand(raw string) (*Command, bool) {
	for _, candidate := range findJSONCandidates(raw) {
		if !strings.Contains(candidate, `"action"`) {
			continue
		}
		var cmd Command
		if err := json.Unmarshal([]byte(candidate), &cmd); err != nil {
			logging.DispatchDebug("discarding malformed command candidate: %v", err)
			continue
		}
		if cmd.Action == "" {
			continue
		}
		logging.Dispatch("extracted command: %s", cmd.Action)
		return &cmd, true
	}
	return nil, false
}

// findJSONCandidates returns every balanced top-level {...} span in s.
// It tracks string literals and escapes so braces inside values do not
// confuse the depth counter. Unterminated spans are dropped.
func findJSONCandidates(s string) []string {
	var candidates []string
	depth := 0
	start := -1
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if escaped {
			escaped = false
			continue
		}
		if c == '\\' && inString {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch c {
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 && start >= 0 {
					candidates = append(candidates, s[start:i+1])
					start = -1
				}
			}
		}
	}

	return candidates
}

// stripCommand removes the first occurrence of the command's JSON span (and
// any markdown fence around it) from the reply, leaving the prose the model
// wrote around it.
func stripCommand(raw string, cmd *Command) string {
	if cmd == nil {
		return raw
	}
	for _, candidate := range findJSONCandidates(raw) {
		if !strings.Contains(candidate, `"action"`) {
			continue
		}
		cleaned := strings.Replace(raw, candidate, "", 1)
		cleaned = strings.ReplaceAll(cleaned, "```json", "")
		cleaned = strings.ReplaceAll(cleaned, "```", "")
		return strings.TrimSpace(cleaned)
	}
	return raw
}
