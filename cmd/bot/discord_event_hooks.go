package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/charmbracelet/log"

	"github.com/benjamonnguyen/pomotimer"
	"github.com/benjamonnguyen/pomotimer/sqlite"
	"github.com/benjamonnguyen/pomotimer/timer"
)

const (
	defaultErrorMsg  = "Looks like something went wrong. Try again in a bit or reach out to support."
	defaultStatsDays = 7
)

type voiceLocator interface {
	VoiceChannel(gID, uID string) (pomotimer.VoiceChannelID, error)
}

func StartTimer(
	ctx context.Context,
	timerManager TimerManager,
	settingsRepo pomotimer.SettingsRepo,
	voice voiceLocator,
	dm DiscordMessenger,
	s *discordgo.Session,
	m *discordgo.InteractionCreate,
) bool {
	if m.Type != discordgo.InteractionApplicationCommand {
		return false
	}

	data := m.ApplicationCommandData()
	if data.Name != pomotimer.TimerCommand.Name {
		return false
	}

	user := GetUser(m.Interaction)
	if m.GuildID == "" || user == nil {
		if _, err := dm.Respond(m.Interaction, false, TextDisplay("Timers can only be started in a server channel.")); err != nil {
			log.Error(err)
		}
		return true
	}

	textCID := pomotimer.TextChannelID(m.ChannelID)
	if timerManager.HasTimer(textCID) {
		if _, err := dm.Respond(m.Interaction, false, TextDisplay("This channel already has an active timer.")); err != nil {
			log.Error(err)
		}
		return true
	}

	cfg, err := applyTimerOptions(userSettings(ctx, settingsRepo, pomotimer.UserID(user.ID)), data.Options)
	if err != nil {
		if _, err := dm.Respond(m.Interaction, false, TextDisplay(capitalize(err.Error())+".")); err != nil {
			log.Error(err)
		}
		return true
	}

	// alarms play in the starter's voice channel, if any
	voiceCID, err := voice.VoiceChannel(m.GuildID, user.ID)
	if err != nil {
		log.Debug("no voice channel for timer alarms", "userID", user.ID, "guildID", m.GuildID, "err", err)
	}

	preview := Timer{
		GuildID:  m.GuildID,
		TextCID:  textCID,
		VoiceCID: voiceCID,
		UserID:   pomotimer.UserID(user.ID),
		View:     timer.Preview(cfg),
	}
	msg, err := dm.Respond(m.Interaction, true, TimerMessageComponents(preview)...)
	if err != nil {
		log.Error(err)
		return true
	}

	t, err := timerManager.StartTimer(ctx, startTimerRequest{
		guildID:   m.GuildID,
		textCID:   textCID,
		voiceCID:  voiceCID,
		messageID: msg.ID,
		userID:    pomotimer.UserID(user.ID),
		config:    cfg,
	})
	if err != nil {
		log.Error("failed to start timer", "cid", textCID, "err", err)
		if _, err := dm.EditResponse(m.Interaction, TextDisplay("Failed to start timer.")); err != nil {
			log.Error(err)
		}
		return true
	}
	log.Info("started timer", "cid", t.TextCID, "mode", cfg.DisplayMode, "uid", t.UserID)

	if err := s.ChannelMessagePin(m.ChannelID, msg.ID); err != nil {
		log.Error("failed to pin message", "err", err)
	}
	return true
}

func TogglePause(timerManager TimerManager, dm DiscordMessenger, m *discordgo.InteractionCreate) bool {
	return handleTimerButton(dm, m, pauseButton, timerManager.TogglePause)
}

func SkipPhase(timerManager TimerManager, dm DiscordMessenger, m *discordgo.InteractionCreate) bool {
	return handleTimerButton(dm, m, skipButton, timerManager.Skip)
}

func FinishWork(timerManager TimerManager, dm DiscordMessenger, m *discordgo.InteractionCreate) bool {
	return handleTimerButton(dm, m, finishButton, timerManager.FinishWork)
}

func StopTimer(timerManager TimerManager, dm DiscordMessenger, m *discordgo.InteractionCreate) bool {
	return handleTimerButton(dm, m, stopButton, timerManager.StopTimer)
}

// handleTimerButton acks the button and applies op. The message itself is
// re-rendered by the timer update hook.
func handleTimerButton(
	dm DiscordMessenger,
	m *discordgo.InteractionCreate,
	buttonType string,
	op func(pomotimer.TextChannelID) (Timer, error),
) bool {
	if m.Type != discordgo.InteractionMessageComponent {
		return false
	}

	data := m.MessageComponentData()
	id, err := FromCustomID(data.CustomID)
	if err != nil {
		return false
	}
	if id.Type != buttonType {
		return false
	}

	followup, err := dm.DeferMessageUpdate(m.Interaction)
	if err != nil {
		log.Error(err)
		return true
	}

	t, err := op(id.TextCID)
	if err != nil {
		log.Error("failed timer button", "button", buttonType, "cid", id.TextCID, "err", err)
		if _, err := followup(getEndMessage(), TextDisplay("This timer is no longer running.")); err != nil {
			log.Error(err)
		}
		return true
	}
	log.Info("pressed timer button", "button", buttonType, "cid", t.TextCID, "phase", t.View.State.Phase)
	return true
}

func SaveSettings(ctx context.Context, settingsRepo pomotimer.SettingsRepo, dm DiscordMessenger, m *discordgo.InteractionCreate) bool {
	if m.Type != discordgo.InteractionApplicationCommand {
		return false
	}

	data := m.ApplicationCommandData()
	if data.Name != pomotimer.SettingsCommand.Name {
		return false
	}

	user := GetUser(m.Interaction)
	if user == nil {
		return true
	}
	uid := pomotimer.UserID(user.ID)

	cfg, err := applyTimerOptions(userSettings(ctx, settingsRepo, uid), data.Options)
	if err != nil {
		if _, err := dm.Respond(m.Interaction, false, TextDisplay(capitalize(err.Error())+".")); err != nil {
			log.Error(err)
		}
		return true
	}

	if _, err := settingsRepo.UpsertSettings(ctx, pomotimer.TimerSettingsRecord{
		UserID:      uid,
		TimerConfig: cfg,
	}); err != nil {
		log.Error("failed to save settings", "uid", uid, "err", err)
		if _, err := dm.Respond(m.Interaction, false, TextDisplay(defaultErrorMsg)); err != nil {
			log.Error(err)
		}
		return true
	}
	log.Info("saved settings", "uid", uid)

	if _, err := dm.Respond(m.Interaction, false, TextDisplay(settingsSummary(cfg))); err != nil {
		log.Error(err)
	}
	return true
}

func ShowStats(ctx context.Context, workLogRepo pomotimer.WorkLogRepo, dm DiscordMessenger, m *discordgo.InteractionCreate) bool {
	if m.Type != discordgo.InteractionApplicationCommand {
		return false
	}

	data := m.ApplicationCommandData()
	if data.Name != pomotimer.StatsCommand.Name {
		return false
	}

	user := GetUser(m.Interaction)
	if user == nil {
		return true
	}
	uid := pomotimer.UserID(user.ID)
	days := intOption(data.Options, pomotimer.DaysOption, defaultStatsDays)

	content, err := statsMessage(ctx, workLogRepo, uid, days, time.Now())
	if err != nil {
		log.Error("failed to get stats", "uid", uid, "err", err)
		content = defaultErrorMsg
	}
	if _, err := dm.Respond(m.Interaction, false, TextDisplay(content)); err != nil {
		log.Error(err)
	}
	return true
}

func statsMessage(ctx context.Context, workLogRepo pomotimer.WorkLogRepo, uid pomotimer.UserID, days int, now time.Time) (string, error) {
	minutes, err := workLogRepo.TotalMinutes(ctx, uid, now.AddDate(0, 0, -days))
	if err != nil {
		return "", err
	}
	var sessions int
	stats, err := workLogRepo.GetSessionStats(ctx, uid)
	switch {
	case err == nil:
		sessions = stats.CompletedSessions
	case errors.Is(err, sqlite.ErrNotFound):
	default:
		return "", err
	}
	return fmt.Sprintf("### Focus Stats\n%d min in the last %d days\n%d completed sessions", minutes, days, sessions), nil
}

// userSettings returns the saved settings for uid, or the defaults.
func userSettings(ctx context.Context, settingsRepo pomotimer.SettingsRepo, uid pomotimer.UserID) pomotimer.TimerConfig {
	saved, err := settingsRepo.GetSettings(ctx, uid)
	if err != nil {
		if !errors.Is(err, sqlite.ErrNotFound) {
			log.Error("failed to get settings", "uid", uid, "err", err)
		}
		return pomotimer.DefaultTimerConfig()
	}
	return saved.TimerConfig
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
