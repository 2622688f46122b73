package theme

import (
	"testing"

	"github.com/muesli/termenv"
)

func TestByNameFallsBack(t *testing.T) {
	if got := ByName("catppuccin-mocha"); got.Name != "catppuccin-mocha" {
		t.Fatalf("ByName = %s", got.Name)
	}
	if got := ByName("nope"); got.Name != FlexokiDark.Name {
		t.Fatalf("unknown theme = %s, want flexoki-dark", got.Name)
	}
}

func TestForProfile(t *testing.T) {
	tests := []struct {
		profile termenv.Profile
		want    string
	}{
		{termenv.TrueColor, "catppuccin-mocha"},
		{termenv.ANSI256, "catppuccin-mocha"},
		{termenv.ANSI, "terminal"},
		{termenv.Ascii, "terminal"},
	}
	for _, tt := range tests {
		if got := ForProfile("catppuccin-mocha", tt.profile); got.Name != tt.want {
			t.Errorf("ForProfile(%v) = %s, want %s", tt.profile, got.Name, tt.want)
		}
	}
}
