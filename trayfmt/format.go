// Package trayfmt renders timer state as a compact tray title.
package trayfmt

import "fmt"

// Timer modes understood by Format.
const (
	ModeFocus        = "focus"
	ModeShortBreak   = "short-break"
	ModeStopwatch    = "stopwatch"
	ModePomodoroPlan = "pomodoro-plan"
)

var modeGlyphs = map[string]string{
	ModeFocus:        "●",
	ModeShortBreak:   "⏸",
	ModeStopwatch:    "⏱",
	ModePomodoroPlan: "📋",
}

// PlanInfo locates the current step of a pomodoro plan.
type PlanInfo struct {
	Name  string `json:"name"`
	Step  int    `json:"step"`
	Total int    `json:"total"`
}

// TimerState is the frontend's view of the timer.
type TimerState struct {
	Seconds int       `json:"seconds"`
	Mode    string    `json:"mode"`
	Running bool      `json:"running"`
	Plan    *PlanInfo `json:"plan,omitempty"`
}

// Format returns the tray title for s, e.g. "▶ ● 24:59" or "📋 05:00 2/4".
func Format(s TimerState) string {
	secs := s.Seconds
	if secs < 0 {
		secs = 0
	}

	glyph, ok := modeGlyphs[s.Mode]
	if !ok {
		glyph = modeGlyphs[ModeStopwatch]
	}

	title := fmt.Sprintf("%s %02d:%02d", glyph, secs/60, secs%60)
	if s.Running {
		title = "▶ " + title
	}
	if s.Plan != nil && s.Mode == ModePomodoroPlan {
		title += fmt.Sprintf(" %d/%d", s.Plan.Step, s.Plan.Total)
	}
	return title
}
