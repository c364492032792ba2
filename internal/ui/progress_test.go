package ui

import (
	"strings"
	"testing"
)

func TestRenderProgressUnknownTotal(t *testing.T) {
	t.Parallel()

	if got := renderProgress(17, 0); got != "  17 directories scanned" {
		t.Fatalf("renderProgress = %q", got)
	}
}

func TestRenderProgressBar(t *testing.T) {
	t.Parallel()

	got := renderProgress(20, 40)
	if !strings.Contains(got, "20/40") {
		t.Fatalf("missing counter: %q", got)
	}
	if strings.Count(got, "#") != 20 || strings.Count(got, "-") != 20 {
		t.Fatalf("bar fill wrong: %q", got)
	}

	full := renderProgress(40, 40)
	if strings.Count(full, "#") != barWidth {
		t.Fatalf("full bar wrong: %q", full)
	}
}

func TestRenderProgressClampsOvershoot(t *testing.T) {
	t.Parallel()

	got := renderProgress(50, 40)
	if !strings.Contains(got, "40/40") {
		t.Fatalf("overshoot not clamped: %q", got)
	}
}
