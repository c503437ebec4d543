package gesture

import "testing"

func TestDebouncer_FiresOnMajority(t *testing.T) {
	d := NewDebouncer(DefaultDebounceConfig())

	for i := 0; i < 4; i++ {
		if ev := d.Observe("A", 0.9); ev != nil {
			t.Fatalf("fired after %d votes, want at least 5", i+1)
		}
	}

	ev := d.Observe("A", 0.9)
	if ev == nil {
		t.Fatal("expected event on fifth vote")
	}
	if ev.Label != "A" || ev.Votes != 5 {
		t.Errorf("event = %+v, want label A with 5 votes", ev)
	}
	if d.Cooldown() != 20 {
		t.Errorf("cooldown = %d, want 20", d.Cooldown())
	}
}

func TestDebouncer_ConfidenceMustExceedThreshold(t *testing.T) {
	d := NewDebouncer(DefaultDebounceConfig())

	for i := 0; i < 10; i++ {
		if ev := d.Observe("A", 0.85); ev != nil {
			t.Fatalf("fired at confidence equal to threshold on frame %d", i)
		}
	}
	if ev := d.Observe("A", 0.86); ev == nil {
		t.Error("expected fire once confidence exceeds threshold")
	}
}

func TestDebouncer_Cooldown(t *testing.T) {
	d := NewDebouncer(DefaultDebounceConfig())

	fired := 0
	firstFire := -1
	secondFire := -1
	for i := 0; i < 40; i++ {
		if ev := d.Observe("A", 0.95); ev != nil {
			fired++
			if firstFire < 0 {
				firstFire = i
			} else if secondFire < 0 {
				secondFire = i
			}
		}
	}

	// Fires on frame 4, then again once 20 decrements have elapsed.
	if firstFire != 4 {
		t.Errorf("first fire at frame %d, want 4", firstFire)
	}
	if secondFire != 24 {
		t.Errorf("second fire at frame %d, want 24", secondFire)
	}
}

func TestDebouncer_DifferentLabelBypassesCooldown(t *testing.T) {
	d := NewDebouncer(DefaultDebounceConfig())
	for i := 0; i < 5; i++ {
		d.Observe("A", 0.95)
	}
	if d.LastLabel() != "A" {
		t.Fatalf("LastLabel = %q, want A", d.LastLabel())
	}

	// Six B votes take the majority of the 10-slot history.
	var ev *Event
	for i := 0; i < 6 && ev == nil; i++ {
		ev = d.Observe("B", 0.95)
	}
	if ev == nil || ev.Label != "B" {
		t.Fatalf("expected B to fire during A's cooldown, got %+v", ev)
	}
}

func TestDebouncer_EmptyLabelNeverFires(t *testing.T) {
	d := NewDebouncer(DefaultDebounceConfig())
	for i := 0; i < 30; i++ {
		if ev := d.Observe("", 0.99); ev != nil {
			t.Fatalf("empty label fired on frame %d", i)
		}
	}
}

func TestDebouncer_TickOnlyDecrements(t *testing.T) {
	d := NewDebouncer(DefaultDebounceConfig())
	for i := 0; i < 5; i++ {
		d.Observe("A", 0.95)
	}
	for i := 0; i < 19; i++ {
		d.Tick()
	}
	if d.Cooldown() != 1 {
		t.Fatalf("cooldown = %d, want 1", d.Cooldown())
	}
	if ev := d.Observe("A", 0.95); ev == nil {
		t.Error("expected fire when the decrement reaches zero")
	}
}

func TestDebouncer_Majority(t *testing.T) {
	tests := []struct {
		name      string
		labels    []string
		want      string
		wantCount int
	}{
		{"single", []string{"A"}, "A", 1},
		{"clear winner", []string{"A", "B", "B"}, "B", 2},
		{"tie goes to first to reach count", []string{"A", "B", "B", "A"}, "B", 2},
		{"tie oldest first", []string{"A", "A", "B", "B"}, "A", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDebouncer(DebounceConfig{History: 10, Majority: 100, Threshold: 0.5})
			for _, l := range tt.labels {
				d.Observe(l, 0.9)
			}
			got, n := d.Majority()
			if got != tt.want || n != tt.wantCount {
				t.Errorf("Majority() = (%q, %d), want (%q, %d)", got, n, tt.want, tt.wantCount)
			}
		})
	}
}

func TestDebouncer_HistoryIsBounded(t *testing.T) {
	d := NewDebouncer(DefaultDebounceConfig())
	for i := 0; i < 10; i++ {
		d.Observe("A", 0.1)
	}
	for i := 0; i < 10; i++ {
		d.Observe("B", 0.1)
	}
	if got, n := d.Majority(); got != "B" || n != 10 {
		t.Errorf("Majority() = (%q, %d), want (B, 10)", got, n)
	}
}

func TestDebouncer_Reset(t *testing.T) {
	d := NewDebouncer(DefaultDebounceConfig())
	for i := 0; i < 5; i++ {
		d.Observe("A", 0.95)
	}
	d.Reset()

	if d.Cooldown() != 0 || d.LastLabel() != "" {
		t.Errorf("after reset cooldown=%d last=%q", d.Cooldown(), d.LastLabel())
	}
	if _, n := d.Majority(); n != 0 {
		t.Errorf("history not cleared, majority count %d", n)
	}
}
