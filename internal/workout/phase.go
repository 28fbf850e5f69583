package workout

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Labels produced by the compiler
const (
	RestBetweenSetsLabel      = "Rest between sets"
	BetweenExercisesRestLabel = "Between Exercises Rest"
	NewPhaseLabel             = "New"
	NewPhaseSeconds           = 30
)

// PhaseKind tells work and rest phases apart
type PhaseKind int

const (
	PhaseKindWork PhaseKind = iota
	PhaseKindRest
)

func (k PhaseKind) String() string {
	switch k {
	case PhaseKindWork:
		return "work"
	case PhaseKindRest:
		return "rest"
	default:
		return fmt.Sprintf("PhaseKind(%d)", int(k))
	}
}

// MarshalText lets the kind travel as "work"/"rest" in JSON and YAML
func (k PhaseKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *PhaseKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "work":
		*k = PhaseKindWork
	case "rest":
		*k = PhaseKindRest
	default:
		return fmt.Errorf("unknown phase kind %q", string(text))
	}
	return nil
}

// Phase is one timed segment of an exercise block
type Phase struct {
	ID      string    `json:"id" yaml:"id"`
	Label   string    `json:"label" yaml:"label"`
	Seconds int       `json:"seconds" yaml:"seconds"`
	Kind    PhaseKind `json:"kind" yaml:"kind"`
	// SetNumber is the 1-based set a work phase belongs to. A rest phase
	// carries the number of the set it follows.
	SetNumber int `json:"setNumber" yaml:"set_number"`
}

// IsRest reports whether p is a rest phase
func (p Phase) IsRest() bool {
	return p.Kind == PhaseKindRest
}

func newPhaseID() string {
	return uuid.NewString()
}

// WorkLabel returns the label of the work phase for a 1-based set
func WorkLabel(set int) string {
	return fmt.Sprintf("Set %d – Work", set)
}

// kindForLabel classifies a hand-edited label
func kindForLabel(label string) PhaseKind {
	if strings.Contains(strings.ToLower(label), "rest") {
		return PhaseKindRest
	}
	return PhaseKindWork
}

// renumber recomputes SetNumber over an edited phase list
func renumber(phases []Phase) {
	set := 0
	for i := range phases {
		if phases[i].Kind == PhaseKindWork {
			set++
		}
		phases[i].SetNumber = max(set, 1)
	}
}
