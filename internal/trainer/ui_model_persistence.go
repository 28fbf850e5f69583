package trainer

import (
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// UIStateFileName is the persisted UI state file inside the app directory
const UIStateFileName = "ui_state.yaml"

type uiModelPersistenceData struct {
	LastPreset string `yaml:"last_preset,omitempty"`
	LastMode   string `yaml:"last_mode,omitempty"`
}

type uiModelPersistence struct {
	filePath string
	data     uiModelPersistenceData
	logger   *log.Logger
}

// newUIModelPersistence loads filePath. An empty path keeps state in memory only.
func newUIModelPersistence(filePath string, logger *log.Logger) *uiModelPersistence {
	p := &uiModelPersistence{
		filePath: filePath,
		logger:   logger,
	}
	p.load()
	return p
}

func (p *uiModelPersistence) lastPreset() string {
	return p.data.LastPreset
}

func (p *uiModelPersistence) setLastPreset(name string) {
	if p.data.LastPreset == name {
		return
	}
	p.logger.Printf("UIModelPersistence: setLastPreset -> %q", name)
	p.data.LastPreset = name
	p.save()
}

func (p *uiModelPersistence) lastMode() (UIMode, bool) {
	return GetUIModeByID(p.data.LastMode)
}

func (p *uiModelPersistence) setLastMode(mode UIMode) {
	info, ok := GetUIModeInfo(mode)
	if !ok || p.data.LastMode == info.ID {
		return
	}
	p.data.LastMode = info.ID
	p.save()
}

func (p *uiModelPersistence) load() {
	p.data = uiModelPersistenceData{}
	if p.filePath == "" {
		return
	}
	raw, err := os.ReadFile(p.filePath)
	if err != nil {
		p.logger.Printf("UIModelPersistence: load %s (no existing file)", p.filePath)
		return
	}
	if err := yaml.Unmarshal(raw, &p.data); err != nil {
		p.logger.Printf("UIModelPersistence: load %s failed to parse: %v", p.filePath, err)
		p.data = uiModelPersistenceData{}
		return
	}
	p.logger.Printf("UIModelPersistence: load %s -> %+v", p.filePath, p.data)
}

func (p *uiModelPersistence) save() {
	if p.filePath == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(p.filePath), 0755); err != nil {
		p.logger.Printf("UIModelPersistence: save mkdir failed: %v", err)
		return
	}
	raw, err := yaml.Marshal(p.data)
	if err != nil {
		p.logger.Printf("UIModelPersistence: save marshal failed: %v", err)
		return
	}
	if err := os.WriteFile(p.filePath, raw, 0644); err != nil {
		p.logger.Printf("UIModelPersistence: save %s failed: %v", p.filePath, err)
		return
	}
	p.logger.Printf("UIModelPersistence: save %s -> %+v", p.filePath, p.data)
}
