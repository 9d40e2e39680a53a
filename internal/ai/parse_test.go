package ai

import (
	"reflect"
	"testing"
)

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"no fences", `{"score":72}`, `{"score":72}`},
		{"plain fences", "```\n{\"score\":72}\n```", `{"score":72}`},
		{"json fences", "```json\n{\"score\":72}\n```", `{"score":72}`},
		{"surrounding whitespace", "  ```json\n{\"score\":72}\n```  ", `{"score":72}`},
		{"fence without newline", "```{\"score\":72}", `{"score":72}`},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripCodeFences(tt.input); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestParseCritique_FencedEqualsUnfenced(t *testing.T) {
	raw := `{"score":72,"title":"Solid casual look","critique":"The fit works but the colors clash.","suggestions":["swap the belt","try darker shoes"]}`
	fenced := "```json\n" + raw + "\n```"

	fromRaw, err := ParseCritique(raw)
	if err != nil {
		t.Fatalf("failed to parse raw JSON: %v", err)
	}
	fromFenced, err := ParseCritique(fenced)
	if err != nil {
		t.Fatalf("failed to parse fenced JSON: %v", err)
	}

	if !reflect.DeepEqual(fromRaw, fromFenced) {
		t.Errorf("fenced and unfenced critiques differ: %+v vs %+v", fromRaw, fromFenced)
	}
	if fromRaw.Score != 72 {
		t.Errorf("expected score 72, got %d", fromRaw.Score)
	}
	if len(fromRaw.Suggestions) != 2 {
		t.Errorf("expected 2 suggestions, got %d", len(fromRaw.Suggestions))
	}
}

func TestParseCritique_ClampsScore(t *testing.T) {
	c, err := ParseCritique(`{"score":150,"title":"t","critique":"c","suggestions":[]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Score != 100 {
		t.Errorf("expected score clamped to 100, got %d", c.Score)
	}

	c, err = ParseCritique(`{"score":-5,"title":"t","critique":"c","suggestions":[]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Score != 0 {
		t.Errorf("expected score clamped to 0, got %d", c.Score)
	}
}

func TestParseCritique_MalformedJSON(t *testing.T) {
	if _, err := ParseCritique("the outfit is nice"); err == nil {
		t.Error("expected error for non-JSON response")
	}
	if _, err := ParseCritique("```json\n{\"score\":\n```"); err == nil {
		t.Error("expected error for truncated JSON")
	}
}
