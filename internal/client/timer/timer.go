// Package timer implements the pomodoro countdown as a pure state machine.
// The caller owns the tick source; the machine only counts.
package timer

import (
	"fmt"
	"sync"
	"time"
)

// Mode selects the countdown preset.
type Mode string

const (
	ModeFocus      Mode = "focus"
	ModeShortBreak Mode = "short-break"
	ModeLongBreak  Mode = "long-break"
	ModeCustom     Mode = "custom"
)

// Preset durations per mode.
const (
	FocusDuration      = 25 * time.Minute
	ShortBreakDuration = 5 * time.Minute
	LongBreakDuration  = 15 * time.Minute
	DefaultCustomMins  = 25
)

// State is the lifecycle phase of the countdown.
type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateFinished State = "finished"
)

// Timer is a countdown over whole seconds. All methods are safe for
// concurrent use.
type Timer struct {
	mu         sync.Mutex
	mode       Mode
	state      State
	remaining  int
	customMins int
}

// New returns an idle focus timer with the full preset loaded.
func New() *Timer {
	return &Timer{
		mode:       ModeFocus,
		state:      StateIdle,
		remaining:  int(FocusDuration.Seconds()),
		customMins: DefaultCustomMins,
	}
}

// preset returns the full duration of the given mode in seconds.
func (t *Timer) preset(mode Mode) int {
	switch mode {
	case ModeShortBreak:
		return int(ShortBreakDuration.Seconds())
	case ModeLongBreak:
		return int(LongBreakDuration.Seconds())
	case ModeCustom:
		return t.customMins * 60
	default:
		return int(FocusDuration.Seconds())
	}
}

// Start begins or resumes the countdown. Starting a finished timer reloads
// the preset first.
func (t *Timer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == StateFinished || t.remaining <= 0 {
		t.remaining = t.preset(t.mode)
	}
	t.state = StateRunning
}

// Pause halts the countdown keeping the remaining seconds.
func (t *Timer) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == StateRunning {
		t.state = StateIdle
	}
}

// Reset stops the countdown and restores the current mode's preset.
func (t *Timer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = StateIdle
	t.remaining = t.preset(t.mode)
}

// SetMode switches preset, stopping any countdown in progress.
func (t *Timer) SetMode(mode Mode) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.mode = mode
	t.state = StateIdle
	t.remaining = t.preset(mode)
}

// SetCustomMinutes records the custom preset length. The new length loads
// immediately only when the timer sits idle in custom mode; while running,
// the edit takes effect on the next reset.
func (t *Timer) SetCustomMinutes(minutes int) {
	if minutes < 1 {
		minutes = 1
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.customMins = minutes
	if t.mode == ModeCustom && t.state != StateRunning {
		t.remaining = minutes * 60
	}
}

// Tick advances the countdown by one second. Reaching zero finishes the
// timer; the remaining count never goes negative. Returns true on the tick
// that finishes the countdown.
func (t *Timer) Tick() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StateRunning {
		return false
	}
	if t.remaining > 0 {
		t.remaining--
	}
	if t.remaining == 0 {
		t.state = StateFinished
		return true
	}
	return false
}

// State returns the current lifecycle phase.
func (t *Timer) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Mode returns the current preset mode.
func (t *Timer) Mode() Mode {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mode
}

// Remaining returns the seconds left on the countdown.
func (t *Timer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

// FormatRemaining renders the countdown as mm:ss.
func (t *Timer) FormatRemaining() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fmt.Sprintf("%02d:%02d", t.remaining/60, t.remaining%60)
}
