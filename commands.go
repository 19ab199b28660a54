package pomotimer

import (
	"github.com/bwmarrin/discordgo"
)

type (
	TextChannelID  string
	VoiceChannelID string
)

const (
	ModeOption      = "mode"
	SectionsOption  = "sections"
	CyclesOption    = "cycles"
	CountdownOption = "countdown"
	VolumeOption    = "volume"
	DaysOption      = "days"
)

func float64Ptr(f float64) *float64 {
	return &f
}

var modeChoices = []*discordgo.ApplicationCommandOptionChoice{
	{Name: CountUpMode.String(), Value: CountUpMode.Key()},
	{Name: CountdownMode.String(), Value: CountdownMode.Key()},
	{Name: IntervalMode.String(), Value: IntervalMode.Key()},
	{Name: FlowmodoroMode.String(), Value: FlowmodoroMode.Key()},
}

func timerOptions() []*discordgo.ApplicationCommandOption {
	return []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        ModeOption,
			Description: "display mode (Default: your saved settings or interval)",
			Choices:     modeChoices,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        SectionsOption,
			Description: "work/break minutes per section, e.g. 25/5,25/5,25/15",
		},
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        CyclesOption,
			Description: "passes through all sections (Default: 1)",
			MinValue:    float64Ptr(1),
			MaxValue:    20,
		},
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        CountdownOption,
			Description: "countdown duration in minutes (Default: 25)",
			MinValue:    float64Ptr(1),
			MaxValue:    240,
		},
	}
}

var TimerCommand = discordgo.ApplicationCommand{
	Name:        "timer",
	Description: "start a focus timer in this channel",
	Options:     timerOptions(),
}

var SettingsCommand = discordgo.ApplicationCommand{
	Name:        "settings",
	Description: "save your default timer settings",
	Options: append(timerOptions(), &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        VolumeOption,
		Description: "alarm volume percent, 0 disables voice alarms (Default: 50)",
		MinValue:    float64Ptr(0),
		MaxValue:    100,
	}),
}

var StatsCommand = discordgo.ApplicationCommand{
	Name:        "stats",
	Description: "show your logged focus time",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        DaysOption,
			Description: "how many days back to count (Default: 7)",
			MinValue:    float64Ptr(1),
			MaxValue:    365,
		},
	},
}
