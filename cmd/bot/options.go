package main

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/benjamonnguyen/pomotimer"
)

// applyTimerOptions overlays slash command options on cfg.
func applyTimerOptions(cfg pomotimer.TimerConfig, opts []*discordgo.ApplicationCommandInteractionDataOption) (pomotimer.TimerConfig, error) {
	cfg = cfg.Clone()
	for _, opt := range opts {
		switch opt.Name {
		case pomotimer.ModeOption:
			val, ok := opt.Value.(string)
			if !ok {
				continue
			}
			mode, err := pomotimer.ParseDisplayMode(val)
			if err != nil {
				return cfg, err
			}
			cfg.DisplayMode = mode
		case pomotimer.SectionsOption:
			val, ok := opt.Value.(string)
			if !ok {
				continue
			}
			sections, err := pomotimer.ParseSections(val)
			if err != nil {
				return cfg, err
			}
			cfg.Sections = sections
		case pomotimer.CyclesOption, pomotimer.CountdownOption, pomotimer.VolumeOption:
			val, ok := opt.Value.(float64)
			if !ok {
				continue
			}
			switch opt.Name {
			case pomotimer.CyclesOption:
				cfg.TotalCycles = int(val)
			case pomotimer.CountdownOption:
				cfg.Countdown = time.Duration(val) * time.Minute
			case pomotimer.VolumeOption:
				cfg.AlarmVolume = val / 100
			}
		}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid timer settings: %w", err)
	}
	return cfg, nil
}

func intOption(opts []*discordgo.ApplicationCommandInteractionDataOption, name string, fallback int) int {
	for _, opt := range opts {
		if opt.Name != name {
			continue
		}
		if val, ok := opt.Value.(float64); ok {
			return int(val)
		}
	}
	return fallback
}
