package gesture

import (
	"testing"
	"time"
)

func TestUtterance_FlushAfterIdle(t *testing.T) {
	u := NewUtterance(2 * time.Second)
	start := time.Unix(1000, 0)

	u.OnFrameProcessed(true, start)
	u.Add("നമസ്കാരം")
	u.Add("നന്ദി")

	if _, ok := u.OnFrameProcessed(false, start.Add(1999*time.Millisecond)); ok {
		t.Fatal("flushed before the idle threshold")
	}

	sentence, ok := u.OnFrameProcessed(false, start.Add(2*time.Second))
	if !ok {
		t.Fatal("expected flush at the idle threshold")
	}
	if sentence != "നമസ്കാരം നന്ദി" {
		t.Errorf("sentence = %q", sentence)
	}

	if _, ok := u.OnFrameProcessed(false, start.Add(5*time.Second)); ok {
		t.Error("flushed twice for one pause")
	}
}

func TestUtterance_PresenceResetsClock(t *testing.T) {
	u := NewUtterance(2 * time.Second)
	start := time.Unix(1000, 0)

	u.OnFrameProcessed(true, start)
	u.Add("വീട്")
	u.OnFrameProcessed(true, start.Add(1500*time.Millisecond))

	if _, ok := u.OnFrameProcessed(false, start.Add(3*time.Second)); ok {
		t.Error("flushed only 1.5s after the last presence")
	}
	if _, ok := u.OnFrameProcessed(false, start.Add(3500*time.Millisecond)); !ok {
		t.Error("expected flush 2s after the last presence")
	}
}

func TestUtterance_NoWordsNoFlush(t *testing.T) {
	u := NewUtterance(time.Second)
	start := time.Unix(1000, 0)
	u.OnFrameProcessed(true, start)

	if _, ok := u.OnFrameProcessed(false, start.Add(10*time.Second)); ok {
		t.Error("flushed with no words")
	}
}

func TestUtterance_Reset(t *testing.T) {
	u := NewUtterance(time.Second)
	u.Add("സഹായം")
	u.Reset()
	if u.Pending() {
		t.Error("expected no pending words after reset")
	}
}
