package ui

import (
	"bytes"
	"strings"
	"testing"
)

func TestProgressBar(t *testing.T) {
	tests := []struct {
		done, total, width int
		want               string
	}{
		{0, 4, 4, "[░░░░] 0/4"},
		{2, 4, 4, "[██░░] 2/4"},
		{4, 4, 4, "[████] 4/4"},
		{0, 0, 2, "[░░] 0/1"},
	}
	for _, tt := range tests {
		if got := ProgressBar(tt.done, tt.total, tt.width); got != tt.want {
			t.Errorf("ProgressBar(%d,%d,%d) = %q, want %q", tt.done, tt.total, tt.width, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Fatalf("got %q", got)
	}
	if got := Truncate("abcdefghij", 8); got != "abcde..." {
		t.Fatalf("got %q", got)
	}
	if got := Truncate("ééééééé", 5); got != "éé..." {
		t.Fatalf("multibyte: got %q", got)
	}
}

func TestMonoTheme(t *testing.T) {
	SetTheme("mono")
	t.Cleanup(func() { SetTheme("classic") })

	var buf bytes.Buffer
	Fail(&buf, "boom")
	if strings.TrimSpace(buf.String()) != "error: boom" {
		t.Fatalf("got %q", buf.String())
	}
	if Box(true) != "[x]" || Box(false) != "[ ]" {
		t.Fatalf("unexpected boxes %q %q", Box(true), Box(false))
	}
	p := Panel([]string{"a", "bb"})
	if !strings.Contains(p, "a") || !strings.Contains(p, "┌") {
		t.Fatalf("unexpected panel:\n%s", p)
	}
}

func TestSetTheme_UnknownFallsBack(t *testing.T) {
	SetTheme("nope")
	if Current().BoxChecked != "☑" {
		t.Fatalf("expected classic theme, got %q", Current().BoxChecked)
	}
}
