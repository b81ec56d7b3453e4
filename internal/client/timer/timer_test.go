package timer

import "testing"

func TestNewTimerStartsIdleAtFocusPreset(t *testing.T) {
	tm := New()
	if tm.State() != StateIdle {
		t.Fatalf("expected idle, got %q", tm.State())
	}
	if tm.Mode() != ModeFocus {
		t.Fatalf("expected focus mode, got %q", tm.Mode())
	}
	if tm.Remaining() != 1500 {
		t.Fatalf("expected 1500 seconds, got %d", tm.Remaining())
	}
}

func TestFullFocusCountdown(t *testing.T) {
	tm := New()
	tm.Start()

	for i := 0; i < 1499; i++ {
		if finished := tm.Tick(); finished {
			t.Fatalf("finished early at tick %d", i+1)
		}
	}
	if tm.Remaining() != 1 {
		t.Fatalf("expected 1 second left, got %d", tm.Remaining())
	}
	if !tm.Tick() {
		t.Fatal("expected tick 1500 to finish the countdown")
	}
	if tm.State() != StateFinished {
		t.Fatalf("expected finished, got %q", tm.State())
	}
	if tm.Remaining() != 0 {
		t.Fatalf("expected 0 remaining, got %d", tm.Remaining())
	}

	// Extra ticks after the finish must not drive the count negative.
	tm.Tick()
	if tm.Remaining() != 0 {
		t.Fatalf("expected remaining pinned at 0, got %d", tm.Remaining())
	}
}

func TestPauseKeepsRemaining(t *testing.T) {
	tm := New()
	tm.Start()
	tm.Tick()
	tm.Tick()
	tm.Pause()

	if tm.State() != StateIdle {
		t.Fatalf("expected idle after pause, got %q", tm.State())
	}
	if tm.Remaining() != 1498 {
		t.Fatalf("expected 1498 remaining, got %d", tm.Remaining())
	}

	// Ticks while paused are ignored.
	tm.Tick()
	if tm.Remaining() != 1498 {
		t.Fatalf("expected paused timer to hold, got %d", tm.Remaining())
	}

	tm.Start()
	tm.Tick()
	if tm.Remaining() != 1497 {
		t.Fatalf("expected resume to continue from 1498, got %d", tm.Remaining())
	}
}

func TestSetModeLoadsPresetAndStops(t *testing.T) {
	tm := New()
	tm.Start()
	tm.Tick()

	tm.SetMode(ModeShortBreak)
	if tm.State() != StateIdle {
		t.Fatalf("expected mode switch to stop the timer, got %q", tm.State())
	}
	if tm.Remaining() != 300 {
		t.Fatalf("expected short break preset 300, got %d", tm.Remaining())
	}

	tm.SetMode(ModeLongBreak)
	if tm.Remaining() != 900 {
		t.Fatalf("expected long break preset 900, got %d", tm.Remaining())
	}
}

func TestCustomMinutesIgnoredWhileRunning(t *testing.T) {
	tm := New()
	tm.SetMode(ModeCustom)
	tm.SetCustomMinutes(10)
	if tm.Remaining() != 600 {
		t.Fatalf("expected 600 seconds after custom edit, got %d", tm.Remaining())
	}

	tm.Start()
	tm.Tick()
	tm.SetCustomMinutes(2)
	if tm.Remaining() != 599 {
		t.Fatalf("expected running countdown unaffected, got %d", tm.Remaining())
	}

	tm.Reset()
	if tm.Remaining() != 120 {
		t.Fatalf("expected reset to load the edited preset, got %d", tm.Remaining())
	}
}

func TestStartAfterFinishReloadsPreset(t *testing.T) {
	tm := New()
	tm.SetMode(ModeCustom)
	tm.SetCustomMinutes(1)
	tm.Start()
	for i := 0; i < 60; i++ {
		tm.Tick()
	}
	if tm.State() != StateFinished {
		t.Fatalf("expected finished, got %q", tm.State())
	}

	tm.Start()
	if tm.State() != StateRunning {
		t.Fatalf("expected running, got %q", tm.State())
	}
	if tm.Remaining() != 60 {
		t.Fatalf("expected preset reloaded to 60, got %d", tm.Remaining())
	}
}

func TestFormatRemaining(t *testing.T) {
	tm := New()
	if got := tm.FormatRemaining(); got != "25:00" {
		t.Fatalf("expected 25:00, got %q", got)
	}
	tm.Start()
	tm.Tick()
	if got := tm.FormatRemaining(); got != "24:59" {
		t.Fatalf("expected 24:59, got %q", got)
	}
	tm.SetMode(ModeShortBreak)
	if got := tm.FormatRemaining(); got != "05:00" {
		t.Fatalf("expected 05:00, got %q", got)
	}
}
