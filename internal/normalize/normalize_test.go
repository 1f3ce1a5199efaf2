package normalize

import (
	"strings"
	"testing"
)

func TestPadName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"notes", "notes"},
		{"  notes  ", "notes"},
		{"team   notes", "team notes"},
		{"tab\tseparated", "tab separated"},
		{"nul\x00byte", "nulbyte"},
		// Decomposed "é" (e + combining acute) composes to a single rune.
		{"cafe\u0301", "caf\u00e9"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := PadName(tt.input)
			if result != tt.expected {
				t.Errorf("PadName(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestValidPadName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"simple", "notes", true},
		{"unicode", "café réunion", true},
		{"max length", strings.Repeat("a", MaxPadNameLength), true},
		{"too long", strings.Repeat("a", MaxPadNameLength+1), false},
		{"multibyte counts runes", strings.Repeat("é", MaxPadNameLength), true},
		{"empty", "", false},
		{"dollar", "a$b", false},
		{"slash", "a/b", false},
		{"question mark", "what?", false},
		{"control char", "a\nb", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidPadName(tt.input); got != tt.want {
				t.Errorf("ValidPadName(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName("  Ada   Lovelace "); got != "Ada Lovelace" {
		t.Errorf("DisplayName() = %q, want %q", got, "Ada Lovelace")
	}
	if got := DisplayName("   "); got != "" {
		t.Errorf("DisplayName(blank) = %q, want empty", got)
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Team Notes", "team-notes"},
		{"Réunion/2024", "reunion-2024"},
		{"--weird--", "weird"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Slug(tt.input); got != tt.expected {
				t.Errorf("Slug(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
