package shortcode

import (
	"strings"
	"testing"
)

func TestCode_LengthAndAlphabet(t *testing.T) {
	g := New(8)

	for i := 0; i < 100; i++ {
		code, err := g.Code()
		if err != nil {
			t.Fatalf("Code() error = %v", err)
		}
		if len(code) != 8 {
			t.Fatalf("len(Code()) = %d, want 8", len(code))
		}
		for _, c := range code {
			if !strings.ContainsRune(Alphabet, c) {
				t.Fatalf("Code() produced %q with character %q outside the alphabet", code, c)
			}
		}
	}
}

func TestNew_DefaultLength(t *testing.T) {
	if got := New(0).Length(); got != DefaultLength {
		t.Errorf("New(0).Length() = %d, want %d", got, DefaultLength)
	}
	if got := New(-3).Length(); got != DefaultLength {
		t.Errorf("New(-3).Length() = %d, want %d", got, DefaultLength)
	}
}

// With the full alphabet and length 8 the code space is 62^8 ≈ 2.18e14,
// so 1000 draws repeating would indicate a broken random source, not bad luck.
func TestCode_NoImmediateRepeats(t *testing.T) {
	g := New(8)
	seen := make(map[string]bool, 1000)

	for i := 0; i < 1000; i++ {
		code, err := g.Code()
		if err != nil {
			t.Fatalf("Code() error = %v", err)
		}
		if seen[code] {
			t.Fatalf("Code() repeated %q within 1000 draws", code)
		}
		seen[code] = true
	}
}

func TestNewWithAlphabet_SingleCharacter(t *testing.T) {
	g := NewWithAlphabet("a", 4)
	code, err := g.Code()
	if err != nil {
		t.Fatalf("Code() error = %v", err)
	}
	if code != "aaaa" {
		t.Errorf("Code() = %q, want %q", code, "aaaa")
	}
}

func TestValidCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"Ab3xYz90", true},
		{"abc", true},
		{"with_underscore", true},
		{"with-dash", true},
		{"", false},
		{"has space", false},
		{"has/slash", false},
		{"has.dot", false},
		{strings.Repeat("a", 20), true},
		{strings.Repeat("a", 21), false},
	}

	for _, tt := range tests {
		if got := ValidCode(tt.code); got != tt.want {
			t.Errorf("ValidCode(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}
