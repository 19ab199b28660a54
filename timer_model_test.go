package pomotimer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDisplayMode(t *testing.T) {
	for _, m := range []DisplayMode{CountUpMode, CountdownMode, IntervalMode, FlowmodoroMode} {
		parsed, err := ParseDisplayMode(m.Key())
		require.NoError(t, err)
		assert.Equal(t, m, parsed)
	}

	parsed, err := ParseDisplayMode(" Pomodoro ")
	require.NoError(t, err)
	assert.Equal(t, IntervalMode, parsed)

	_, err = ParseDisplayMode("lap")
	assert.Error(t, err)
}

func TestParseSections(t *testing.T) {
	sections, err := ParseSections("25/5, 50/10,30")
	require.NoError(t, err)
	assert.Equal(t, []Section{
		{ID: 1, Work: 25 * time.Minute, Break: 5 * time.Minute},
		{ID: 2, Work: 50 * time.Minute, Break: 10 * time.Minute},
		{ID: 3, Work: 30 * time.Minute},
	}, sections)
	assert.Equal(t, "25/5,50/10,30/0", FormatSections(sections))

	for _, bad := range []string{"", ",", "a/5", "25/b", "-1/5"} {
		_, err := ParseSections(bad)
		assert.Error(t, err, bad)
	}
}

func TestTimerConfig_Validate(t *testing.T) {
	require.NoError(t, DefaultTimerConfig().Validate())

	cfg := DefaultTimerConfig()
	cfg.DisplayMode = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultTimerConfig()
	cfg.TotalCycles = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultTimerConfig()
	cfg.Sections = nil
	assert.Error(t, cfg.Validate())

	cfg = DefaultTimerConfig()
	cfg.AlarmVolume = 1.5
	assert.Error(t, cfg.Validate())
}

func TestTimerConfig_Clone(t *testing.T) {
	cfg := DefaultTimerConfig()
	clone := cfg.Clone()
	clone.Sections[0].Work = time.Minute

	assert.Equal(t, 25*time.Minute, cfg.Sections[0].Work)
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "Work", WorkPhase.String())
	assert.Equal(t, "Break", BreakPhase.String())
	assert.Panics(t, func() {
		_ = Phase(9).String()
	})
}
