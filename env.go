package pomotimer

import (
	"github.com/joho/godotenv"
)

const (
	DatabaseURLKey       = "POMOTIMER_DB_PATH"
	BotNameKey           = "POMOTIMER_BOT_NAME"
	BotTokenKey          = "POMOTIMER_BOT_TOKEN"
	LogLevelKey          = "POMOTIMER_LOG_LEVEL"
	WorkSoundPathKey     = "POMOTIMER_WORK_SOUND_PATH"
	BreakSoundPathKey    = "POMOTIMER_BREAK_SOUND_PATH"
	FinishedSoundPathKey = "POMOTIMER_FINISHED_SOUND_PATH"
)

// LoadEnv loads .env in production and .env.dev otherwise. Missing files are fine,
// the process environment still applies.
func LoadEnv(isProd bool) {
	if isProd {
		_ = godotenv.Load(".env")
	} else {
		_ = godotenv.Load(".env.dev")
	}
}
