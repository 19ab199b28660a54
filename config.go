package pomotimer

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
)

type Config struct {
	DatabaseURL string
	BotName     string
	BotToken    string
	LogLevel    log.Level

	WorkSoundPath     string
	BreakSoundPath    string
	FinishedSoundPath string
}

// LoadConfig reads the environment after loading the env file for isProd.
// The bot token is only required when requireToken is set.
func LoadConfig(isProd, requireToken bool) (Config, error) {
	LoadEnv(isProd)

	config := Config{
		DatabaseURL:       os.Getenv(DatabaseURLKey),
		BotName:           os.Getenv(BotNameKey),
		BotToken:          os.Getenv(BotTokenKey),
		LogLevel:          log.InfoLevel,
		WorkSoundPath:     os.Getenv(WorkSoundPathKey),
		BreakSoundPath:    os.Getenv(BreakSoundPathKey),
		FinishedSoundPath: os.Getenv(FinishedSoundPathKey),
	}

	if requireToken && config.BotToken == "" {
		return Config{}, fmt.Errorf("required environment variable: %s", BotTokenKey)
	}

	if config.BotName == "" {
		config.BotName = "Pomotimer"
	}
	if config.DatabaseURL == "" {
		config.DatabaseURL = "pomotimer.db"
	}
	if lvl := os.Getenv(LogLevelKey); lvl != "" {
		parsed, err := log.ParseLevel(lvl)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", LogLevelKey, err)
		}
		config.LogLevel = parsed
	}

	return config, nil
}
