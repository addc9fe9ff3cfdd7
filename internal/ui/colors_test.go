package ui

import "testing"

func TestStyles(t *testing.T) {
	if got := Success("ok"); got != ColorGreen+"ok"+ColorReset {
		t.Fatalf("unexpected success style: %q", got)
	}

	Plain = true
	defer func() { Plain = false }()
	if got := Error("failed"); got != "failed" {
		t.Fatalf("plain mode should not style, got %q", got)
	}
}
