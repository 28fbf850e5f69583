package workout

import "slices"

// WithPhaseUpdated replaces the label and duration of the phase with the given
// id. Seconds are clamped to [1, MaxPhaseSec]. ok is false when no phase matches.
func (b CompiledBlock) WithPhaseUpdated(id, label string, seconds int) (CompiledBlock, bool) {
	idx := b.indexOf(id)
	if idx < 0 {
		return b, false
	}
	out := b.Clone()
	out.Phases[idx].Label = label
	out.Phases[idx].Seconds = ClampPhaseSec(seconds)
	out.Phases[idx].Kind = kindForLabel(label)
	renumber(out.Phases)
	return out, true
}

// WithPhaseRemoved drops the phase with the given id. Removing the last
// remaining phase yields an empty block.
func (b CompiledBlock) WithPhaseRemoved(id string) (CompiledBlock, bool) {
	idx := b.indexOf(id)
	if idx < 0 {
		return b, false
	}
	out := b.Clone()
	out.Phases = slices.Delete(out.Phases, idx, idx+1)
	renumber(out.Phases)
	return out, true
}

// WithPhaseAppended adds a default work phase at the end of the block
func (b CompiledBlock) WithPhaseAppended() CompiledBlock {
	out := b.Clone()
	out.Phases = append(out.Phases, Phase{
		ID:      newPhaseID(),
		Label:   NewPhaseLabel,
		Seconds: NewPhaseSeconds,
		Kind:    PhaseKindWork,
	})
	renumber(out.Phases)
	return out
}

func (b CompiledBlock) indexOf(id string) int {
	return slices.IndexFunc(b.Phases, func(p Phase) bool { return p.ID == id })
}
