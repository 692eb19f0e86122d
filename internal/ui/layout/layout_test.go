package layout

import (
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
)

func TestIsTooSmall(t *testing.T) {
	tests := []struct {
		w, h int
		want bool
	}{
		{MinWidth, MinHeight, false},
		{MinWidth - 1, MinHeight, true},
		{MinWidth, MinHeight - 1, true},
		{200, 60, false},
	}
	for _, tt := range tests {
		if got := IsTooSmall(tt.w, tt.h); got != tt.want {
			t.Errorf("IsTooSmall(%d, %d) = %v, want %v", tt.w, tt.h, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("World capitals", 6); got != "World…" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate = %q", got)
	}
}

func TestRenderHeaderFitsWidth(t *testing.T) {
	h := RenderHeader("A very long quiz title that will not fit in the bar", "Page 1 of 3", 60)
	if w := lipgloss.Width(h); w != 60 {
		t.Errorf("header width = %d, want 60", w)
	}
	if !strings.Contains(h, "Page 1 of 3") {
		t.Error("status should survive truncation")
	}
}

func TestRenderFooterDropsHintsThatDoNotFit(t *testing.T) {
	hints := []KeyHint{{"n", "Next"}, {"p", "Previous"}, {"s", "Summary"}, {"q", "Back"}}
	f := RenderFooter(hints, 30)
	if !strings.Contains(f, "Next") {
		t.Error("first hint should be shown")
	}
	if strings.Contains(f, "Back") {
		t.Error("hints past the width should be dropped")
	}
}
