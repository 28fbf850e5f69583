package trainer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rivo/tview"

	"github.com/lowaak/interval-timer/internal/timer"
	"github.com/lowaak/interval-timer/internal/workout"
)

// Structure form labels
const (
	labelExercises     = "Exercises"
	labelSets          = "Sets per exercise"
	labelWork          = "Work (s)"
	labelRestSets      = "Rest between sets (s)"
	labelRestExercises = "Rest between exercises (s)"
	labelCap           = "Time cap (min)"
	labelRepeat        = "Repeat indefinitely"
	labelNames         = "Exercise names"
)

// structureFields is the text content of the structure form
type structureFields struct {
	Exercises     string
	Sets          string
	Work          string
	RestSets      string
	RestExercises string
	Cap           string
	Repeat        bool
	Names         string
}

func fieldsFromStructure(s workout.WorkoutStructure) structureFields {
	return structureFields{
		Exercises:     strconv.Itoa(s.NumExercises),
		Sets:          strconv.Itoa(s.SetsPerExercise),
		Work:          strconv.Itoa(s.SetWorkSec),
		RestSets:      strconv.Itoa(s.RestBetweenSetsSec),
		RestExercises: strconv.Itoa(s.RestBetweenExercisesSec),
		Cap:           strconv.FormatFloat(s.TotalMinutesCap, 'f', -1, 64),
		Repeat:        s.RepeatIndefinitely,
		Names:         strings.Join(s.ExerciseNames, ", "),
	}
}

// structure parses the form. Blank numeric fields read as zero and are
// clamped by the compiler like any other out-of-range value.
func (f structureFields) structure() (workout.WorkoutStructure, error) {
	s := workout.WorkoutStructure{
		RepeatIndefinitely: f.Repeat,
		ExerciseNames:      parseExerciseNames(f.Names),
	}
	ints := []struct {
		label string
		text  string
		dst   *int
	}{
		{labelExercises, f.Exercises, &s.NumExercises},
		{labelSets, f.Sets, &s.SetsPerExercise},
		{labelWork, f.Work, &s.SetWorkSec},
		{labelRestSets, f.RestSets, &s.RestBetweenSetsSec},
		{labelRestExercises, f.RestExercises, &s.RestBetweenExercisesSec},
	}
	for _, field := range ints {
		text := strings.TrimSpace(field.text)
		if text == "" {
			continue
		}
		v, err := strconv.Atoi(text)
		if err != nil {
			return workout.WorkoutStructure{}, fmt.Errorf("invalid %s %q", strings.ToLower(field.label), field.text)
		}
		*field.dst = v
	}
	if text := strings.TrimSpace(f.Cap); text != "" {
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return workout.WorkoutStructure{}, fmt.Errorf("invalid %s %q", strings.ToLower(labelCap), f.Cap)
		}
		s.TotalMinutesCap = v
	}
	if err := s.Validate(); err != nil {
		return workout.WorkoutStructure{}, err
	}
	return s, nil
}

// parseExerciseNames splits a comma separated list. Blank entries are kept
// so positions still line up with exercises.
func parseExerciseNames(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	parts := strings.Split(text, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func parseSeconds(text string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, fmt.Errorf("invalid seconds %q", text)
	}
	return v, nil
}

func formatPhaseItem(index int, phase workout.Phase) string {
	color := "green"
	if phase.IsRest() {
		color = "blue"
	}
	return fmt.Sprintf("%2d. [%s]%-26s[white] %6s", index+1, color, tview.Escape(phase.Label), workout.FormatDuration(phase.Seconds))
}

func formatHeader(current UIMode, audioEnabled bool) string {
	var b strings.Builder
	for i, info := range AllUIModes {
		if i > 0 {
			b.WriteString("  |  ")
		}
		if info.Mode == current {
			fmt.Fprintf(&b, "[black:yellow] %c %s [-:-]", info.KeyBinding, info.DisplayName)
		} else {
			fmt.Fprintf(&b, "[yellow]%c[white] %s", info.KeyBinding, info.DisplayName)
		}
	}
	audio := "[green]on[white]"
	if !audioEnabled {
		audio = "[red]muted[white]"
	}
	fmt.Fprintf(&b, "\n[yellow]Space[white] Start/Pause  |  [yellow]R[white] Reset  |  [yellow]M[white] Audio: %s  |  [yellow]Esc[white] Quit", audio)
	return b.String()
}

// capReached reports whether the engine stopped because the cap elapsed
func capReached(state timer.Snapshot) bool {
	return state.Capped && !state.Running && state.PlannedSeconds > 0 && state.TotalElapsedSec >= state.PlannedSeconds
}

func formatStatus(state timer.Snapshot) string {
	switch {
	case state.Running:
		return "[green]RUNNING[white]"
	case capReached(state):
		return "[red]TIME CAP REACHED[white]"
	case state.TotalElapsedSec > 0:
		return "[yellow]PAUSED[white]"
	default:
		return "[gray]READY[white]"
	}
}

func formatTimerText(state timer.Snapshot, audioEnabled bool) string {
	if state.PhaseCount == 0 {
		return "\n  [gray]No intervals[white]\n\n  Build a structure in Structure mode (press 1).\n"
	}

	next := state.NextLabel
	if next == "" {
		next = "-"
	}

	text := "\n"
	text += fmt.Sprintf("  %s\n\n", formatStatus(state))
	text += fmt.Sprintf("  [yellow]%s[white]\n\n", tview.Escape(state.ContextualLabel))
	text += fmt.Sprintf("  [gray]Time left:[white] [::b]%s[::-]\n", state.TimeLeftText)
	text += fmt.Sprintf("  [gray]Next:[white]      %s\n\n", tview.Escape(next))
	text += fmt.Sprintf("  [gray]Elapsed:[white]   %s / %s\n", state.ElapsedText, state.CapText)
	if state.Capped {
		text += fmt.Sprintf("  %s %d%%\n", progressBar(state.ProgressPct, progressBarWidth), state.ProgressPct)
	} else {
		text += "  [gray]Repeating indefinitely[white]\n"
	}
	text += fmt.Sprintf("  [gray]%s[white]\n", tview.Escape(state.Position))
	if state.CompletedCycles > 0 {
		text += fmt.Sprintf("  [gray]Cycles completed:[white] %d\n", state.CompletedCycles)
	}
	if !audioEnabled {
		text += "\n  [red]Audio muted[white]\n"
	}
	return text
}

func formatFullScreenText(state timer.Snapshot) string {
	label := state.CurrentLabel
	if state.ExerciseName != "" && state.PhaseCount > 0 {
		label = fmt.Sprintf("%s • %s", label, state.ExerciseName)
	}
	text := fmt.Sprintf("\n\n[yellow]%s[white]\n\n", tview.Escape(label))
	text += renderBigText(state.TimeLeftText)
	if state.NextLabel != "" {
		text += fmt.Sprintf("\n\n[gray]Next: %s[white]", tview.Escape(state.NextLabel))
	}
	text += fmt.Sprintf("\n\n%s\n", formatStatus(state))
	return text
}

// progressBar draws pct (0-100) as a bar width cells wide
func progressBar(pct, width int) string {
	pct = min(100, max(0, pct))
	filled := pct * width / 100
	return "[green]" + strings.Repeat("█", filled) + "[gray]" + strings.Repeat("░", width-filled) + "[white]"
}

const bigTextRows = 5

var bigGlyphs = map[rune][bigTextRows]string{
	'0': {"███", "█ █", "█ █", "█ █", "███"},
	'1': {" █ ", "██ ", " █ ", " █ ", "███"},
	'2': {"███", "  █", "███", "█  ", "███"},
	'3': {"███", "  █", "███", "  █", "███"},
	'4': {"█ █", "█ █", "███", "  █", "  █"},
	'5': {"███", "█  ", "███", "  █", "███"},
	'6': {"███", "█  ", "███", "█ █", "███"},
	'7': {"███", "  █", "  █", "  █", "  █"},
	'8': {"███", "█ █", "███", "█ █", "███"},
	'9': {"███", "█ █", "███", "  █", "███"},
	':': {" ", "█", " ", "█", " "},
}

// renderBigText draws digits and colons in a five row block font.
// Every row has the same width so the text centers cleanly.
func renderBigText(s string) string {
	var rows [bigTextRows]strings.Builder
	for i, r := range []rune(s) {
		glyph, ok := bigGlyphs[r]
		if !ok {
			glyph = [bigTextRows]string{"   ", "   ", "   ", "   ", "   "}
		}
		for row := range rows {
			if i > 0 {
				rows[row].WriteString(" ")
			}
			rows[row].WriteString(glyph[row])
		}
	}
	lines := make([]string, bigTextRows)
	for row := range rows {
		lines[row] = rows[row].String()
	}
	return strings.Join(lines, "\n")
}
