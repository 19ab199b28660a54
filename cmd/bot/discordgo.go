package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/benjamonnguyen/pomotimer"
	"github.com/benjamonnguyen/pomotimer/timer"
)

type DiscordMessenger interface {
	SendChannelMessage(cID pomotimer.TextChannelID, components ...discordgo.MessageComponent) (*discordgo.Message, error)
	EditChannelMessage(cID pomotimer.TextChannelID, messageID string, components ...discordgo.MessageComponent) (*discordgo.Message, error)
	Respond(it *discordgo.Interaction, wait bool, components ...discordgo.MessageComponent) (*discordgo.Message, error)
	EditResponse(it *discordgo.Interaction, components ...discordgo.MessageComponent) (*discordgo.Message, error)
	DeferMessageUpdate(it *discordgo.Interaction) (followup, error)
}

func NewDiscordMessenger(client *discordgo.Session) DiscordMessenger {
	return &messenger{
		client: client,
	}
}

type messenger struct {
	client *discordgo.Session
}

func (m *messenger) SendChannelMessage(cID pomotimer.TextChannelID, components ...discordgo.MessageComponent) (*discordgo.Message, error) {
	return m.client.ChannelMessageSendComplex(string(cID), &discordgo.MessageSend{
		Flags:      discordgo.MessageFlagsIsComponentsV2,
		Components: components,
	})
}

func (m *messenger) EditChannelMessage(cID pomotimer.TextChannelID, messageID string, components ...discordgo.MessageComponent) (*discordgo.Message, error) {
	return m.client.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    string(cID),
		ID:         messageID,
		Flags:      discordgo.MessageFlagsIsComponentsV2,
		Components: &components,
	})
}

// Respond returns message only when wait == true
func (m *messenger) Respond(it *discordgo.Interaction, wait bool, components ...discordgo.MessageComponent) (*discordgo.Message, error) {
	if err := m.client.InteractionRespond(it, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags:      discordgo.MessageFlagsIsComponentsV2,
			Components: components,
		},
	}); err != nil {
		return nil, err
	}
	if wait {
		return m.client.InteractionResponse(it)
	}
	return nil, nil
}

func (m *messenger) EditResponse(it *discordgo.Interaction, components ...discordgo.MessageComponent) (*discordgo.Message, error) {
	return m.client.InteractionResponseEdit(it, &discordgo.WebhookEdit{
		Components: &components,
	})
}

type followup func(components ...discordgo.MessageComponent) (*discordgo.Message, error)

func (m *messenger) DeferMessageUpdate(it *discordgo.Interaction) (followup, error) {
	if err := m.client.InteractionRespond(it, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	}); err != nil {
		return nil, err
	}
	return func(components ...discordgo.MessageComponent) (*discordgo.Message, error) {
		return m.client.FollowupMessageEdit(it, it.Message.ID, &discordgo.WebhookEdit{
			Components: &components,
		})
	}, nil
}

func GetUser(m *discordgo.Interaction) *discordgo.User {
	if m.Member != nil {
		return m.Member.User
	}
	return m.User
}

const (
	pauseButton  = "pause"
	skipButton   = "skip"
	finishButton = "finish"
	stopButton   = "stop"
)

type InteractionID struct {
	Type    string
	TextCID pomotimer.TextChannelID
}

func FromCustomID(customID string) (InteractionID, error) {
	parts := strings.Split(customID, ":")
	if len(parts) != 2 {
		return InteractionID{}, fmt.Errorf("invalid customID: %s", customID)
	}
	return InteractionID{
		Type:    parts[0],
		TextCID: pomotimer.TextChannelID(parts[1]),
	}, nil
}

func (id InteractionID) ToCustomID() string {
	return fmt.Sprintf("%s:%s", id.Type, id.TextCID)
}

type Color int

const (
	ColorGreen     Color = 0x57f287
	ColorBlue      Color = 0x3498db
	ColorLightGrey Color = 0xbcc0c0
)

func (c Color) ToInt() *int {
	i := int(c)
	return &i
}

func TextDisplay(content string) discordgo.TextDisplay {
	return discordgo.TextDisplay{
		Content: content,
	}
}

const (
	timerBarLength     = 20
	timerBarFilledChar = "⣶"
	timerBarEmptyChar  = "⡀"
)

func TimerMessageComponents(t Timer) []discordgo.MessageComponent {
	if t.Ended {
		return []discordgo.MessageComponent{
			getEndMessage(),
		}
	}
	cfg := t.View.Config
	state := t.View.State

	// action row
	pauseLabel := "Pause"
	if state.Paused() {
		pauseLabel = "Resume"
	}
	buttons := []discordgo.MessageComponent{
		discordgo.Button{
			Label:    pauseLabel,
			Style:    discordgo.SecondaryButton,
			CustomID: InteractionID{Type: pauseButton, TextCID: t.TextCID}.ToCustomID(),
		},
	}
	switch cfg.DisplayMode {
	case pomotimer.IntervalMode:
		buttons = append(buttons, discordgo.Button{
			Label:    "Skip",
			Style:    discordgo.PrimaryButton,
			CustomID: InteractionID{Type: skipButton, TextCID: t.TextCID}.ToCustomID(),
		})
	case pomotimer.FlowmodoroMode:
		if state.Phase == pomotimer.WorkPhase {
			buttons = append(buttons, discordgo.Button{
				Label:    "Finish work",
				Style:    discordgo.SuccessButton,
				CustomID: InteractionID{Type: finishButton, TextCID: t.TextCID}.ToCustomID(),
			})
		} else {
			buttons = append(buttons, discordgo.Button{
				Label:    "Skip",
				Style:    discordgo.PrimaryButton,
				CustomID: InteractionID{Type: skipButton, TextCID: t.TextCID}.ToCustomID(),
			})
		}
	case pomotimer.CountUpMode, pomotimer.CountdownMode:
	}
	buttons = append(buttons, discordgo.Button{
		Label:    "Stop",
		Style:    discordgo.DangerButton,
		CustomID: InteractionID{Type: stopButton, TextCID: t.TextCID}.ToCustomID(),
	})
	actionRow := discordgo.ActionsRow{
		Components: buttons,
	}

	// timer
	accentColor := ColorGreen
	if state.Phase == pomotimer.BreakPhase {
		accentColor = ColorBlue
	}
	if state.Paused() {
		accentColor = ColorLightGrey
	}
	timerContainer := discordgo.Container{
		Components: []discordgo.MessageComponent{
			TextDisplay(strings.Join(timerTextParts(t.View), "\n")),
		},
		AccentColor: accentColor.ToInt(),
	}

	return []discordgo.MessageComponent{
		getStartMessage(),
		timerContainer,
		actionRow,
	}
}

func timerTextParts(v timer.View) []string {
	cfg := v.Config
	state := v.State

	title := fmt.Sprintf("### %s", cfg.DisplayMode)
	switch cfg.DisplayMode {
	case pomotimer.IntervalMode, pomotimer.FlowmodoroMode:
		title = fmt.Sprintf("### %s · %s", cfg.DisplayMode, state.Phase)
	case pomotimer.CountUpMode, pomotimer.CountdownMode:
	}
	if state.Paused() {
		title += " (paused)"
	}
	parts := []string{title, fmt.Sprintf("**%s**", v.Display)}
	if hasTimerBar(cfg, state) {
		parts = append(parts, timerBar(v.Progress))
	}

	if cfg.DisplayMode == pomotimer.IntervalMode {
		for i, s := range cfg.Sections {
			line := fmt.Sprintf("%d. %d min work | %d min break", i+1, int(s.Work.Minutes()), int(s.Break.Minutes()))
			if i == state.SectionIndex {
				line = fmt.Sprintf("**%s**", line)
			}
			parts = append(parts, line)
		}
		parts = append(parts, fmt.Sprintf("Cycle: %d | %d", state.Cycle, cfg.TotalCycles))
	}
	if state.CompletedWorkSessions > 0 {
		parts = append(parts, fmt.Sprintf("Completed sessions: %d", state.CompletedWorkSessions))
	}
	return parts
}

func hasTimerBar(cfg pomotimer.TimerConfig, state timer.RunState) bool {
	switch cfg.DisplayMode {
	case pomotimer.IntervalMode, pomotimer.CountdownMode:
		return true
	case pomotimer.FlowmodoroMode:
		return state.Phase == pomotimer.BreakPhase
	case pomotimer.CountUpMode:
		return false
	default:
		return false
	}
}

// timerBar fills with progress, a percent in [0, 100].
func timerBar(progress float64) string {
	filled := int(math.Round(progress / 100 * timerBarLength))
	filled = min(max(filled, 0), timerBarLength)
	return strings.Repeat(timerBarFilledChar, filled) + strings.Repeat(timerBarEmptyChar, timerBarLength-filled)
}

func getStartMessage() discordgo.MessageComponent {
	return TextDisplay("It's productivity o'clock!")
}

func getEndMessage() discordgo.MessageComponent {
	return TextDisplay("Good stuff!")
}

func settingsSummary(cfg pomotimer.TimerConfig) string {
	return strings.Join([]string{
		"### Timer Settings",
		fmt.Sprintf("Mode: %s", cfg.DisplayMode),
		fmt.Sprintf("Sections: %s", pomotimer.FormatSections(cfg.Sections)),
		fmt.Sprintf("Cycles: %d", cfg.TotalCycles),
		fmt.Sprintf("Countdown: %d min", int(cfg.Countdown.Minutes())),
		fmt.Sprintf("Alarm volume: %d%%", int(math.Round(cfg.AlarmVolume*100))),
	}, "\n")
}
