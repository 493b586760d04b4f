package analysis

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncateForClassifier(t *testing.T) {
	short := "print('hi')"
	if got := TruncateForClassifier(short); got != short {
		t.Errorf("short input changed: %q", got)
	}

	exact := strings.Repeat("a", ClassifierInputLimit)
	if got := TruncateForClassifier(exact); got != exact {
		t.Errorf("input at the limit should be kept whole, got len %d", len(got))
	}

	long := strings.Repeat("x", 5000)
	if got := TruncateForClassifier(long); got != long[:ClassifierInputLimit] {
		t.Errorf("expected first %d chars, got len %d", ClassifierInputLimit, len(got))
	}

	if got := TruncateForClassifier(""); got != "" {
		t.Errorf("empty input should stay empty, got %q", got)
	}
}

func TestTruncateForClassifier_CountsCodePoints(t *testing.T) {
	in := strings.Repeat("é", 600)
	got := TruncateForClassifier(in)
	if n := utf8.RuneCountInString(got); n != ClassifierInputLimit {
		t.Fatalf("expected %d runes, got %d", ClassifierInputLimit, n)
	}
	if !utf8.ValidString(got) {
		t.Fatal("truncation split a multi-byte rune")
	}
	if !strings.HasPrefix(in, got) {
		t.Fatal("truncated text must be a prefix of the input")
	}
}

func TestStatusFromLabel(t *testing.T) {
	cases := []struct {
		label string
		want  Status
	}{
		{"LABEL_0", StatusSecure},
		{"LABEL_1", StatusPotentiallyInsecure},
		{"Insecure", StatusPotentiallyInsecure},
		{"INSECURE_CODE", StatusPotentiallyInsecure},
		{"secure", StatusSecure},
		{"v10", StatusPotentiallyInsecure},
		{"", StatusSecure},
	}
	for _, tc := range cases {
		if got := StatusFromLabel(tc.label); got != tc.want {
			t.Errorf("StatusFromLabel(%q) = %q, want %q", tc.label, got, tc.want)
		}
	}
}

func TestParseModel(t *testing.T) {
	cases := map[string]Model{
		"groq":   ModelGroq,
		"gemini": ModelGemini,
		"":       ModelGemini,
		"Groq":   ModelGemini,
		"gpt-4":  ModelGemini,
	}
	for raw, want := range cases {
		if got := ParseModel(raw); got != want {
			t.Errorf("ParseModel(%q) = %q, want %q", raw, got, want)
		}
	}
}
