package tray

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTitles(t *testing.T) {
	if got := connectionsTitle(1); got != "1 client connected" {
		t.Errorf("connectionsTitle(1) = %q", got)
	}
	if got := connectionsTitle(3); got != "3 clients connected" {
		t.Errorf("connectionsTitle(3) = %q", got)
	}
	if got := lastTitle(""); got != "Last: none" {
		t.Errorf("lastTitle(\"\") = %q", got)
	}
	if got := lastTitle("നമസ്കാരം നന്ദി"); got != "Last: നമസ്കാരം നന്ദി" {
		t.Errorf("lastTitle() = %q", got)
	}

	long := strings.Repeat("വീട് ", 20)
	got := lastTitle(long)
	if !utf8.ValidString(got) {
		t.Fatalf("truncation split a character: %q", got)
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("expected ellipsis, got %q", got)
	}
	if n := utf8.RuneCountInString(strings.TrimPrefix(got, "Last: ")); n != maxSentenceRunes+1 {
		t.Errorf("truncated length = %d runes", n)
	}
}

func TestUpdateBeforeReady(t *testing.T) {
	tr := New()
	if !tr.IsEnabled() {
		t.Fatal("new tray should be enabled")
	}
	tr.Update(Status{Enabled: false, Connections: 2, LastSentence: "നന്ദി"})
	if tr.IsEnabled() {
		t.Error("Update should record the enabled state")
	}
}
