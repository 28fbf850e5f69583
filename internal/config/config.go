package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/lowaak/interval-timer/internal/workout"
)

const (
	appDirName = ".interval-timer"
	envPrefix  = "INTERVAL_TIMER"
)

// Keys
const (
	KeyExercises        = "workout.exercises"
	KeySets             = "workout.sets"
	KeyWorkSec          = "workout.work_sec"
	KeyRestSetsSec      = "workout.rest_between_sets_sec"
	KeyRestExercisesSec = "workout.rest_between_exercises_sec"
	KeyCapMinutes       = "workout.cap_minutes"
	KeyRepeat           = "workout.repeat_indefinitely"
	KeyExerciseNames    = "workout.exercise_names"
	KeyTickInterval     = "timer.tick_interval"
	KeyAudioEnabled     = "audio.enabled"
	KeyLogFile          = "log.file"
	KeyLogMaxSizeMB     = "log.max_size_mb"
	KeyLogMaxBackups    = "log.max_backups"
	KeyLogMaxAgeDays    = "log.max_age_days"
	KeyPresetsDB        = "presets.db"
	KeyPreset           = "preset"
	KeyStructureFile    = "structure_file"
	KeyRemoteAddr       = "remote.addr"
	KeyHeadless         = "headless"
)

const (
	defaultLogMaxSizeMB  = 5
	defaultLogMaxBackups = 3
	defaultLogMaxAgeDays = 28
)

// LogConfig controls the rotated log file
type LogConfig struct {
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Config is the fully resolved application configuration
type Config struct {
	Workout       workout.WorkoutStructure
	TickInterval  time.Duration
	AudioEnabled  bool
	Log           LogConfig
	PresetsDB     string
	Preset        string
	StructureFile string
	RemoteAddr    string
	Headless      bool

	// ConfigFile is the file that was read, "" when none
	ConfigFile string
	// Dir is the per-user state directory
	Dir string
}

// DefaultDir returns ~/.interval-timer, falling back to the working
// directory when the home directory is unknown
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return appDirName
	}
	return filepath.Join(home, appDirName)
}

// Load resolves configuration from defaults, the config file, INTERVAL_TIMER_*
// environment variables and command line args, later sources winning.
// pflag.ErrHelp is returned when -h/--help was given.
func Load(args []string) (*Config, error) {
	dir := DefaultDir()
	v := viper.New()
	setDefaults(v, dir)

	flags := newFlagSet(v)
	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	if err := bindFlags(v, flags); err != nil {
		return nil, err
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configFile, _ := flags.GetString("config")
	explicit := configFile != ""
	if !explicit {
		configFile = filepath.Join(dir, "config.yaml")
	}
	v.SetConfigFile(configFile)
	if err := v.ReadInConfig(); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
		configFile = ""
	}

	cfg := &Config{
		Workout: workout.WorkoutStructure{
			NumExercises:            v.GetInt(KeyExercises),
			SetsPerExercise:         v.GetInt(KeySets),
			SetWorkSec:              v.GetInt(KeyWorkSec),
			RestBetweenSetsSec:      v.GetInt(KeyRestSetsSec),
			RestBetweenExercisesSec: v.GetInt(KeyRestExercisesSec),
			TotalMinutesCap:         v.GetFloat64(KeyCapMinutes),
			RepeatIndefinitely:      v.GetBool(KeyRepeat),
			ExerciseNames:           v.GetStringSlice(KeyExerciseNames),
		},
		TickInterval: v.GetDuration(KeyTickInterval),
		AudioEnabled: v.GetBool(KeyAudioEnabled),
		Log: LogConfig{
			File:       v.GetString(KeyLogFile),
			MaxSizeMB:  v.GetInt(KeyLogMaxSizeMB),
			MaxBackups: v.GetInt(KeyLogMaxBackups),
			MaxAgeDays: v.GetInt(KeyLogMaxAgeDays),
		},
		PresetsDB:     v.GetString(KeyPresetsDB),
		Preset:        v.GetString(KeyPreset),
		StructureFile: v.GetString(KeyStructureFile),
		RemoteAddr:    v.GetString(KeyRemoteAddr),
		Headless:      v.GetBool(KeyHeadless),
		ConfigFile:    configFile,
		Dir:           dir,
	}
	cfg.Workout.ExerciseNames = workout.ResizeExerciseNames(cfg.Workout.ExerciseNames, max(1, cfg.Workout.NumExercises))

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, dir string) {
	v.SetDefault(KeyExercises, workout.DefaultNumExercises)
	v.SetDefault(KeySets, workout.DefaultSetsPerExercise)
	v.SetDefault(KeyWorkSec, workout.DefaultSetWorkSec)
	v.SetDefault(KeyRestSetsSec, workout.DefaultRestBetweenSetsSec)
	v.SetDefault(KeyRestExercisesSec, workout.DefaultRestBetweenExercisesSec)
	v.SetDefault(KeyCapMinutes, workout.DefaultTotalMinutesCap)
	v.SetDefault(KeyRepeat, false)
	v.SetDefault(KeyExerciseNames, []string{})
	v.SetDefault(KeyTickInterval, time.Second)
	v.SetDefault(KeyAudioEnabled, true)
	v.SetDefault(KeyLogFile, filepath.Join(dir, "interval-timer.log"))
	v.SetDefault(KeyLogMaxSizeMB, defaultLogMaxSizeMB)
	v.SetDefault(KeyLogMaxBackups, defaultLogMaxBackups)
	v.SetDefault(KeyLogMaxAgeDays, defaultLogMaxAgeDays)
	v.SetDefault(KeyPresetsDB, filepath.Join(dir, "presets.db"))
	v.SetDefault(KeyPreset, "")
	v.SetDefault(KeyStructureFile, "")
	v.SetDefault(KeyRemoteAddr, "")
	v.SetDefault(KeyHeadless, false)
}

// flagKeys maps command line flags onto config keys
var flagKeys = map[string]string{
	"exercises":      KeyExercises,
	"sets":           KeySets,
	"work":           KeyWorkSec,
	"rest-sets":      KeyRestSetsSec,
	"rest-exercises": KeyRestExercisesSec,
	"cap":            KeyCapMinutes,
	"repeat":         KeyRepeat,
	"names":          KeyExerciseNames,
	"tick-interval":  KeyTickInterval,
	"audio":          KeyAudioEnabled,
	"log-file":       KeyLogFile,
	"presets-db":     KeyPresetsDB,
	"preset":         KeyPreset,
	"structure":      KeyStructureFile,
	"remote":         KeyRemoteAddr,
	"headless":       KeyHeadless,
}

func newFlagSet(v *viper.Viper) *pflag.FlagSet {
	flags := pflag.NewFlagSet("interval-timer", pflag.ContinueOnError)
	flags.SortFlags = false

	flags.String("config", "", "config file (default ~/.interval-timer/config.yaml)")
	flags.Int("exercises", v.GetInt(KeyExercises), "number of exercises")
	flags.Int("sets", v.GetInt(KeySets), "sets per exercise")
	flags.Int("work", v.GetInt(KeyWorkSec), "work seconds per set")
	flags.Int("rest-sets", v.GetInt(KeyRestSetsSec), "rest seconds between sets")
	flags.Int("rest-exercises", v.GetInt(KeyRestExercisesSec), "rest seconds between exercises")
	flags.Float64("cap", v.GetFloat64(KeyCapMinutes), "total time cap in minutes")
	flags.Bool("repeat", v.GetBool(KeyRepeat), "repeat indefinitely, ignoring the cap")
	flags.StringSlice("names", nil, "exercise names, comma separated")
	flags.Duration("tick-interval", v.GetDuration(KeyTickInterval), "length of one timer second")
	flags.Bool("audio", v.GetBool(KeyAudioEnabled), "terminal bell cues")
	flags.String("log-file", v.GetString(KeyLogFile), "log file path")
	flags.String("presets-db", v.GetString(KeyPresetsDB), "preset database path")
	flags.String("preset", "", "load the named preset at start-up")
	flags.String("structure", "", "import a YAML preset file at start-up")
	flags.String("remote", "", "serve the remote control API on this address, e.g. :8080")
	flags.Bool("headless", false, "run without the terminal UI and print progress to stdout")
	return flags
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

func (c *Config) validate() error {
	if c.TickInterval <= 0 {
		return fmt.Errorf("%s must be positive, got %s", KeyTickInterval, c.TickInterval)
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAgeDays < 0 {
		return fmt.Errorf("log rotation settings cannot be negative")
	}
	if c.Preset != "" && c.StructureFile != "" {
		return fmt.Errorf("--preset and --structure cannot be used together")
	}
	if err := c.Workout.Validate(); err != nil {
		return fmt.Errorf("workout: %w", err)
	}
	return nil
}
