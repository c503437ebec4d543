package gesture

import (
	"strings"
	"time"
)

// Utterance accumulates fired words and flushes them as a sentence once the
// signer has been idle long enough.
type Utterance struct {
	idle     time.Duration
	words    []string
	lastSeen time.Time
}

// NewUtterance creates an Utterance that flushes after idle without presence.
func NewUtterance(idle time.Duration) *Utterance {
	return &Utterance{idle: idle}
}

// Add appends a fired word.
func (u *Utterance) Add(word string) { u.words = append(u.words, word) }

// Words returns a copy of the pending words.
func (u *Utterance) Words() []string {
	return append([]string(nil), u.words...)
}

// OnFrameProcessed records whether the frame contained a hand or face and
// returns the pending sentence when the idle threshold has passed. Words are
// cleared on flush so a single pause flushes once.
func (u *Utterance) OnFrameProcessed(present bool, now time.Time) (string, bool) {
	if present || u.lastSeen.IsZero() {
		u.lastSeen = now
		return "", false
	}
	if len(u.words) == 0 || now.Sub(u.lastSeen) < u.idle {
		return "", false
	}
	return u.Flush(), true
}

// Flush returns the pending words joined by spaces and clears them.
func (u *Utterance) Flush() string {
	s := strings.Join(u.words, " ")
	u.words = u.words[:0]
	return s
}

// Pending reports whether any words are waiting to be flushed.
func (u *Utterance) Pending() bool { return len(u.words) > 0 }

// Reset drops pending words and the presence clock.
func (u *Utterance) Reset() {
	u.words = u.words[:0]
	u.lastSeen = time.Time{}
}
