package presets

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a preset from a YAML file. A file without a name gets the
// file's base name.
func LoadFile(path string) (*Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read preset file: %w", err)
	}

	var p Preset
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse preset file %s: %w", path, err)
	}
	if p.Name == "" {
		base := filepath.Base(path)
		p.Name = base[:len(base)-len(filepath.Ext(base))]
	}
	if p.Name, err = NormalizeName(p.Name); err != nil {
		return nil, fmt.Errorf("preset file %s: %w", path, err)
	}
	if err := p.Structure.Validate(); err != nil {
		return nil, fmt.Errorf("preset file %s: %w", path, err)
	}
	return &p, nil
}

// WriteFile stores p as YAML at path, creating parent directories
func WriteFile(path string, p Preset) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create preset directory: %w", err)
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode preset %q: %w", p.Name, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write preset file: %w", err)
	}
	return nil
}
