// Package localsettings persists terminal timer settings as YAML in the user config dir.
package localsettings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/benjamonnguyen/pomotimer"
)

const settingsFileName = "settings.yaml"

type yamlSection struct {
	WorkMinutes  int `yaml:"work_minutes"`
	BreakMinutes int `yaml:"break_minutes"`
}

type yamlSettings struct {
	Mode             string        `yaml:"mode"`
	Sections         []yamlSection `yaml:"sections"`
	TotalCycles      int           `yaml:"total_cycles"`
	CountdownMinutes int           `yaml:"countdown_minutes"`
	AlarmVolume      *float64      `yaml:"alarm_volume,omitempty"`
}

// Load reads timer settings from path.
// If the file does not exist, default settings are returned.
func Load(path string) (pomotimer.TimerConfig, error) {
	settings := pomotimer.DefaultTimerConfig()

	rawData, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	if err := applyYamlSettings(&settings, fileData); err != nil {
		return pomotimer.DefaultTimerConfig(), err
	}
	return settings, nil
}

// Save writes timer settings to path, creating parent directories.
func Save(path string, settings pomotimer.TimerConfig) error {
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	volume := settings.AlarmVolume
	fileData := yamlSettings{
		Mode:             settings.DisplayMode.Key(),
		TotalCycles:      settings.TotalCycles,
		CountdownMinutes: int(settings.Countdown / time.Minute),
		AlarmVolume:      &volume,
	}
	for _, s := range settings.Sections {
		fileData.Sections = append(fileData.Sections, yamlSection{
			WorkMinutes:  int(s.Work / time.Minute),
			BreakMinutes: int(s.Break / time.Minute),
		})
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := os.WriteFile(path, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}

func ResolvePath(appName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, settingsFileName), nil
}

func applyYamlSettings(settings *pomotimer.TimerConfig, fileData yamlSettings) error {
	if fileData.Mode != "" {
		mode, err := pomotimer.ParseDisplayMode(fileData.Mode)
		if err != nil {
			return err
		}
		settings.DisplayMode = mode
	}
	if len(fileData.Sections) > 0 {
		sections := make([]pomotimer.Section, 0, len(fileData.Sections))
		for i, s := range fileData.Sections {
			if s.WorkMinutes < 0 || s.BreakMinutes < 0 {
				return fmt.Errorf("section %d has negative minutes", i+1)
			}
			sections = append(sections, pomotimer.Section{
				ID:    i + 1,
				Work:  time.Duration(s.WorkMinutes) * time.Minute,
				Break: time.Duration(s.BreakMinutes) * time.Minute,
			})
		}
		settings.Sections = sections
	}
	if fileData.TotalCycles > 0 {
		settings.TotalCycles = fileData.TotalCycles
	}
	if fileData.CountdownMinutes > 0 {
		settings.Countdown = time.Duration(fileData.CountdownMinutes) * time.Minute
	}
	if v := fileData.AlarmVolume; v != nil && *v >= 0 && *v <= 1 {
		settings.AlarmVolume = *v
	}
	return nil
}
