package trainer

import (
	"fmt"
	"io"
	"sync"

	"github.com/lowaak/interval-timer/internal/timer"
	"github.com/lowaak/interval-timer/internal/workout"
)

// ConsoleView is the headless StateSink. It prints one line per snapshot and
// closes Done once the time cap stops the timer.
type ConsoleView struct {
	mu       sync.Mutex
	out      io.Writer
	last     timer.Snapshot
	hasLast  bool
	done     chan struct{}
	doneOnce sync.Once
}

var _ timer.StateSink = (*ConsoleView)(nil)

func NewConsoleView(out io.Writer) *ConsoleView {
	if out == nil {
		panic("ConsoleView: out cannot be nil")
	}
	return &ConsoleView{out: out, done: make(chan struct{})}
}

// Done is closed when the timer has stopped on its cap
func (v *ConsoleView) Done() <-chan struct{} {
	return v.done
}

// SetTimerState prints state unless it repeats the previous line
func (v *ConsoleView) SetTimerState(state timer.Snapshot) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.hasLast && v.last == state {
		return
	}
	v.last, v.hasLast = state, true
	fmt.Fprintln(v.out, formatConsoleLine(state))

	if capReached(state) {
		v.doneOnce.Do(func() { close(v.done) })
	}
}

// SetWorkoutPlan prints a one line summary of the compiled block
func (v *ConsoleView) SetWorkoutPlan(plan timer.Plan) {
	v.mu.Lock()
	defer v.mu.Unlock()

	planned, capped := plan.Structure.PlannedSeconds()
	fmt.Fprintf(v.out, "plan: %d intervals x %d exercises, cap %s\n",
		len(plan.Block.Phases), plan.Block.BlockRepeats, workout.FormatCap(planned, capped))
}

func formatConsoleLine(state timer.Snapshot) string {
	status := "paused"
	switch {
	case state.Running:
		status = "running"
	case capReached(state):
		status = "done"
	}
	line := fmt.Sprintf("[%s] %s %s | elapsed %s/%s", status, state.TimeLeftText, state.ContextualLabel, state.ElapsedText, state.CapText)
	if state.NextLabel != "" {
		line += " | next: " + state.NextLabel
	}
	return line
}
