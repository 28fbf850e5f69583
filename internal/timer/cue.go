package timer

import "fmt"

// Cue is an audio signal requested by the engine
type Cue int

const (
	// CueTick is the short countdown beep over the last seconds of a phase
	CueTick Cue = iota
	// CueTransition marks the move into a new phase
	CueTransition
)

func (c Cue) String() string {
	switch c {
	case CueTick:
		return "tick"
	case CueTransition:
		return "transition"
	default:
		return fmt.Sprintf("Cue(%d)", int(c))
	}
}

// countdownCueSeconds is the highest remaining time that still beeps
const countdownCueSeconds = 3
