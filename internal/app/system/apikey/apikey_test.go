package apikey

import (
	"strings"
	"testing"
)

func TestNew_ShapeAndUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		k := New()
		if !strings.HasPrefix(k, "nh_") {
			t.Fatalf("key missing prefix: %q", k)
		}
		if !Plausible(k) {
			t.Fatalf("freshly minted key failed Plausible: %q", k)
		}
		if seen[k] {
			t.Fatalf("duplicate key minted: %q", k)
		}
		seen[k] = true
	}
}

func TestPlausible(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"", false},
		{"nh_", false},
		{"nh_short", false},
		{"xx_0123456789abcdef0123456789abcdef", false},
		{"nh_0123456789abcdef0123456789abcdef", true},
	}
	for _, tt := range tests {
		if got := Plausible(tt.input); got != tt.want {
			t.Errorf("Plausible(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
