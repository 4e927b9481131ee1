package task

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"unicode"
)

// Payload is a decoded but unvalidated request body, keyed by field name.
type Payload map[string]json.RawMessage

// Fields holds a validated set of client-supplied task fields for creation.
type Fields struct {
	Title       string
	Description string
	Completed   bool
	Priority    Priority
}

// Patch holds the fields present in an update request. Nil means absent.
type Patch struct {
	Title       *string
	Description *string
	Completed   *bool
	Priority    *Priority
}

// ValidatePayload checks a creation payload: title and description must be
// non-empty strings, completed a boolean and priority an enumerated level.
// The returned error names every failing field.
func ValidatePayload(p Payload) (Fields, error) {
	var f Fields
	var bad []string

	if s, ok := nonEmptyString(p["title"]); ok {
		f.Title = s
	} else {
		bad = append(bad, "title")
	}
	if s, ok := nonEmptyString(p["description"]); ok {
		f.Description = s
	} else {
		bad = append(bad, "description")
	}
	if b, ok := boolean(p["completed"]); ok {
		f.Completed = b
	} else {
		bad = append(bad, "completed")
	}
	if pr, ok := priority(p["priority"]); ok {
		f.Priority = pr
	} else {
		bad = append(bad, "priority")
	}

	if len(bad) > 0 {
		return Fields{}, validationError(strings.Join(bad, ", "), "Invalid task data")
	}
	return f, nil
}

// DecodePatch extracts the update fields present in p. Each present field
// must satisfy the same rule as on creation.
func DecodePatch(p Payload) (Patch, error) {
	var patch Patch
	var bad []string

	if raw, ok := p["title"]; ok {
		if s, ok := nonEmptyString(raw); ok {
			patch.Title = &s
		} else {
			bad = append(bad, "title")
		}
	}
	if raw, ok := p["description"]; ok {
		if s, ok := nonEmptyString(raw); ok {
			patch.Description = &s
		} else {
			bad = append(bad, "description")
		}
	}
	if raw, ok := p["completed"]; ok {
		if b, ok := boolean(raw); ok {
			patch.Completed = &b
		} else {
			bad = append(bad, "completed")
		}
	}
	if raw, ok := p["priority"]; ok {
		if pr, ok := priority(raw); ok {
			patch.Priority = &pr
		} else {
			bad = append(bad, "priority")
		}
	}

	if len(bad) > 0 {
		return Patch{}, validationError(strings.Join(bad, ", "), "Invalid task data")
	}
	return patch, nil
}

// ParseID interprets a path-supplied id the way a base-10 integer prefix
// parse does: leading whitespace and a sign are accepted and anything after
// the leading digits is ignored, so "12abc" is 12. The result must be > 0.
func ParseID(raw string) (int, error) {
	s := strings.TrimLeftFunc(raw, unicode.IsSpace)
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 || neg {
		return 0, validationError("", "Invalid task ID")
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil || n <= 0 {
		return 0, validationError("", "Invalid task ID")
	}
	return n, nil
}

// IsValidID reports whether raw is accepted by ParseID.
func IsValidID(raw string) bool {
	_, err := ParseID(raw)
	return err == nil
}

// ParsePriority validates a priority level taken from a path segment.
func ParsePriority(raw string) (Priority, error) {
	p := Priority(raw)
	if !p.Valid() {
		return "", validationError("", "Invalid priority level")
	}
	return p, nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func nonEmptyString(raw json.RawMessage) (string, bool) {
	if isNull(raw) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		return "", false
	}
	return s, true
}

func boolean(raw json.RawMessage) (bool, bool) {
	if isNull(raw) {
		return false, false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false, false
	}
	return b, true
}

func priority(raw json.RawMessage) (Priority, bool) {
	s, ok := nonEmptyString(raw)
	if !ok || !Priority(s).Valid() {
		return "", false
	}
	return Priority(s), true
}
