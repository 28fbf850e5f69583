package presets

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lowaak/interval-timer/internal/workout"
)

var (
	// ErrNotFound is returned for a preset name that is not stored
	ErrNotFound = errors.New("preset not found")
	// ErrEmptyName is returned when a preset name is blank
	ErrEmptyName = errors.New("preset name cannot be empty")
)

// Preset is a named, saved workout structure
type Preset struct {
	Name      string                   `yaml:"name" json:"name"`
	Structure workout.WorkoutStructure `yaml:"structure" json:"structure"`
	UpdatedAt time.Time                `yaml:"-" json:"updatedAt"`
}

// NormalizeName trims a user-entered name and rejects blank ones
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	return name, nil
}

// Save inserts p or replaces the preset with the same name
func (s *Store) Save(p Preset) (err error) {
	name, err := NormalizeName(p.Name)
	if err != nil {
		return err
	}
	st := p.Structure
	now := time.Now().UTC().Format(time.RFC3339)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save preset %q: %w", name, err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	_, err = tx.Exec(`
		INSERT INTO presets (name, num_exercises, sets_per_exercise, set_work_sec,
			rest_between_sets_sec, rest_between_exercises_sec, total_minutes_cap,
			repeat_indefinitely, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			num_exercises = excluded.num_exercises,
			sets_per_exercise = excluded.sets_per_exercise,
			set_work_sec = excluded.set_work_sec,
			rest_between_sets_sec = excluded.rest_between_sets_sec,
			rest_between_exercises_sec = excluded.rest_between_exercises_sec,
			total_minutes_cap = excluded.total_minutes_cap,
			repeat_indefinitely = excluded.repeat_indefinitely,
			updated_at = excluded.updated_at`,
		name, st.NumExercises, st.SetsPerExercise, st.SetWorkSec,
		st.RestBetweenSetsSec, st.RestBetweenExercisesSec, st.TotalMinutesCap,
		boolToInt(st.RepeatIndefinitely), now, now,
	)
	if err != nil {
		return fmt.Errorf("upsert preset %q: %w", name, err)
	}

	if _, err = tx.Exec(`DELETE FROM preset_exercises WHERE preset_name = ?`, name); err != nil {
		return fmt.Errorf("clear exercises of %q: %w", name, err)
	}
	for i, exName := range st.ExerciseNames {
		if _, err = tx.Exec(
			`INSERT INTO preset_exercises (preset_name, position, name) VALUES (?, ?, ?)`,
			name, i, exName,
		); err != nil {
			return fmt.Errorf("insert exercise %d of %q: %w", i, name, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit preset %q: %w", name, err)
	}
	return nil
}

// Get loads the preset called name
func (s *Store) Get(name string) (*Preset, error) {
	name, err := NormalizeName(name)
	if err != nil {
		return nil, err
	}

	p := &Preset{Name: name}
	var repeat int
	var updatedAt string
	err = s.db.QueryRow(`
		SELECT num_exercises, sets_per_exercise, set_work_sec, rest_between_sets_sec,
			rest_between_exercises_sec, total_minutes_cap, repeat_indefinitely, updated_at
		FROM presets WHERE name = ?`, name,
	).Scan(&p.Structure.NumExercises, &p.Structure.SetsPerExercise, &p.Structure.SetWorkSec,
		&p.Structure.RestBetweenSetsSec, &p.Structure.RestBetweenExercisesSec,
		&p.Structure.TotalMinutesCap, &repeat, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get preset %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get preset %q: %w", name, err)
	}
	p.Structure.RepeatIndefinitely = repeat == 1
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	names, err := s.exerciseNames(name)
	if err != nil {
		return nil, err
	}
	p.Structure.ExerciseNames = names
	return p, nil
}

func (s *Store) exerciseNames(preset string) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT name FROM preset_exercises WHERE preset_name = ? ORDER BY position`, preset,
	)
	if err != nil {
		return nil, fmt.Errorf("list exercises of %q: %w", preset, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// List returns the names of all stored presets in alphabetical order
func (s *Store) List() ([]string, error) {
	rows, err := s.db.Query(`SELECT name FROM presets ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list presets: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// Delete removes the preset called name
func (s *Store) Delete(name string) error {
	name, err := NormalizeName(name)
	if err != nil {
		return err
	}
	res, err := s.db.Exec(`DELETE FROM presets WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete preset %q: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete preset %q: %w", name, ErrNotFound)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
