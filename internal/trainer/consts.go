package trainer

import "time"

// UIMode represents the current UI mode/screen
type UIMode int

const (
	UIModeStructure  UIMode = iota // Structure builder and generated phases
	UIModeTimer                    // Running timer with labels and progress
	UIModeFullScreen               // Large countdown only
	UIModePresets                  // Saved presets
)

// UIModeInfo contains display information for a UI mode
type UIModeInfo struct {
	Mode        UIMode
	ID          string // Stable name used in the persisted UI state
	DisplayName string
	KeyBinding  rune // The number key to activate this mode (1-9)
}

// AllUIModes defines all available UI modes in order
var AllUIModes = []UIModeInfo{
	{Mode: UIModeStructure, ID: "structure", DisplayName: "Structure", KeyBinding: '1'},
	{Mode: UIModeTimer, ID: "timer", DisplayName: "Timer", KeyBinding: '2'},
	{Mode: UIModeFullScreen, ID: "fullscreen", DisplayName: "Full Screen", KeyBinding: '3'},
	{Mode: UIModePresets, ID: "presets", DisplayName: "Presets", KeyBinding: '4'},
}

// GetUIModeByKey returns the mode for a given key binding
func GetUIModeByKey(key rune) (UIMode, bool) {
	for _, info := range AllUIModes {
		if info.KeyBinding == key {
			return info.Mode, true
		}
	}
	return 0, false
}

// GetUIModeInfo returns the info for a given mode
func GetUIModeInfo(mode UIMode) (UIModeInfo, bool) {
	for _, info := range AllUIModes {
		if info.Mode == mode {
			return info, true
		}
	}
	return UIModeInfo{}, false
}

// GetUIModeByID returns the mode persisted under id
func GetUIModeByID(id string) (UIMode, bool) {
	for _, info := range AllUIModes {
		if info.ID == id {
			return info.Mode, true
		}
	}
	return 0, false
}

// Global keys
const (
	KeyToggle = ' '
	KeyReset  = 'r'
	KeyMute   = 'm'
)

// Structure mode keys (phase list focused)
const (
	KeyAppendPhase = 'a'
	KeyDeletePhase = 'x'
)

// Presets mode keys
const (
	KeySavePreset   = 's'
	KeyDeletePreset = 'd'
	KeyExportPreset = 'e'
)

const (
	maxLogLines = 1000

	// logResizeInterval is how often the log pane height is polled
	logResizeInterval = 100 * time.Millisecond

	// cueRepeatGap separates the beeps of a transition cue
	cueRepeatGap = 150 * time.Millisecond

	progressBarWidth = 40
)
