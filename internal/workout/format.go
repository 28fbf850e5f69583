package workout

import "fmt"

// FormatDuration renders whole seconds as M:SS, or H:MM:SS from one hour up.
// Negative input renders as 0:00.
func FormatDuration(totalSec int) string {
	s := max(0, totalSec)
	m := s / 60
	r := s % 60
	if m >= 60 {
		return fmt.Sprintf("%d:%02d:%02d", m/60, m%60, r)
	}
	return fmt.Sprintf("%d:%02d", m, r)
}

// FormatCap renders a planned duration, or "∞" when the workout is uncapped
func FormatCap(plannedSec int, capped bool) string {
	if !capped {
		return "∞"
	}
	return FormatDuration(plannedSec)
}
