package task

import (
	"encoding/json"
	"strings"
	"testing"
)

func payload(t *testing.T, s string) Payload {
	t.Helper()
	var p Payload
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	return p
}

func TestValidatePayload(t *testing.T) {
	f, err := ValidatePayload(payload(t, `{"title":"A","description":"d","completed":false,"priority":"low"}`))
	if err != nil {
		t.Fatalf("valid payload rejected: %v", err)
	}
	if f.Title != "A" || f.Description != "d" || f.Completed || f.Priority != PriorityLow {
		t.Fatalf("unexpected fields: %+v", f)
	}
}

func TestValidatePayloadRejects(t *testing.T) {
	cases := []struct {
		name  string
		body  string
		field string
	}{
		{"missing description", `{"title":"A","completed":false,"priority":"low"}`, "description"},
		{"empty title", `{"title":"","description":"d","completed":false,"priority":"low"}`, "title"},
		{"numeric title", `{"title":5,"description":"d","completed":false,"priority":"low"}`, "title"},
		{"string completed", `{"title":"A","description":"d","completed":"false","priority":"low"}`, "completed"},
		{"null completed", `{"title":"A","description":"d","completed":null,"priority":"low"}`, "completed"},
		{"missing completed", `{"title":"A","description":"d","priority":"low"}`, "completed"},
		{"unknown priority", `{"title":"A","description":"d","completed":true,"priority":"urgent"}`, "priority"},
		{"empty object", `{}`, "title, description, completed, priority"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidatePayload(payload(t, tc.body))
			if KindOf(err) != KindValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
			te, _ := err.(*Error)
			if te.Field != tc.field {
				t.Fatalf("field = %q, want %q", te.Field, tc.field)
			}
			if !strings.HasPrefix(err.Error(), "Invalid task data") {
				t.Fatalf("unexpected message %q", err.Error())
			}
		})
	}
}

func TestDecodePatch(t *testing.T) {
	p, err := DecodePatch(payload(t, `{"completed":true}`))
	if err != nil {
		t.Fatalf("decode patch: %v", err)
	}
	if p.Completed == nil || !*p.Completed {
		t.Fatalf("completed not set: %+v", p)
	}
	if p.Title != nil || p.Description != nil || p.Priority != nil {
		t.Fatalf("absent fields should stay nil: %+v", p)
	}

	p, err = DecodePatch(Payload{})
	if err != nil {
		t.Fatalf("empty patch: %v", err)
	}
	if p != (Patch{}) {
		t.Fatalf("empty patch should be zero: %+v", p)
	}

	if _, err := DecodePatch(payload(t, `{"priority":"urgent","completed":"yes"}`)); KindOf(err) != KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestParseID(t *testing.T) {
	valid := map[string]int{
		"1":     1,
		"42":    42,
		"+7":    7,
		" 3":    3,
		"12abc": 12,
		"1.5":   1,
		"007":   7,
	}
	for raw, want := range valid {
		got, err := ParseID(raw)
		if err != nil {
			t.Fatalf("ParseID(%q): %v", raw, err)
		}
		if got != want {
			t.Fatalf("ParseID(%q) = %d, want %d", raw, got, want)
		}
	}

	for _, raw := range []string{"", "abc", "0", "-1", "-0", "0x10", ".5", "+", "99999999999999999999999"} {
		if IsValidID(raw) {
			t.Fatalf("IsValidID(%q) should be false", raw)
		}
		if _, err := ParseID(raw); err == nil || err.Error() != "Invalid task ID" {
			t.Fatalf("ParseID(%q) err = %v", raw, err)
		}
	}
}

func TestParsePriority(t *testing.T) {
	for _, p := range Priorities {
		if got, err := ParsePriority(string(p)); err != nil || got != p {
			t.Fatalf("ParsePriority(%q) = %q, %v", p, got, err)
		}
	}
	for _, raw := range []string{"", "LOW", "urgent"} {
		if _, err := ParsePriority(raw); KindOf(err) != KindValidation {
			t.Fatalf("ParsePriority(%q) should fail", raw)
		}
	}
}
