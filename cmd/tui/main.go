package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	txStdLib "github.com/Thiht/transactor/stdlib"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/benjamonnguyen/pomotimer"
	"github.com/benjamonnguyen/pomotimer/localsettings"
	"github.com/benjamonnguyen/pomotimer/sqlite"
)

const appName = "pomotimer"

var (
	dbPath       string
	logFile      string
	settingsFile string
)

func main() {
	root := rootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		flags timerFlags
		save  bool
	)

	cmd := &cobra.Command{
		Use:          appName,
		Short:        "Focus timer for the terminal",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			closeLog, err := setupLogging()
			if err != nil {
				return err
			}
			defer closeLog()

			path, err := settingsPath()
			if err != nil {
				return err
			}
			cfg, err := localsettings.Load(path)
			if err != nil {
				return err
			}
			cfg, err = flags.apply(cfg, cmd.Flags().Changed)
			if err != nil {
				return err
			}
			if save {
				if err := localsettings.Save(path, cfg); err != nil {
					return err
				}
				cmd.Printf("Saved settings to %s\n", path)
			}

			deps := modelDeps{bell: os.Stderr}
			if dbPath != "" {
				db, err := sqlite.Open(dbPath)
				if err != nil {
					return err
				}
				defer db.Close() //nolint
				tx, dbGetter := txStdLib.NewTransactor(db, txStdLib.NestedTransactionsSavepoints)
				deps.repo = sqlite.NewWorkLogRepo(dbGetter, *log.Default())
				deps.tx = tx
			}

			_, err = tea.NewProgram(newModel(cfg, deps)).Run()
			return err
		},
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "sqlite database for the work log")
	cmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write debug logs to this file")
	cmd.PersistentFlags().StringVar(&settingsFile, "settings", "", "settings file (default: <user config dir>/pomotimer/settings.yaml)")

	cmd.Flags().StringVar(&flags.mode, "mode", "", "countup, countdown, interval or flowmodoro")
	cmd.Flags().StringVar(&flags.sections, "sections", "", `work/break minutes, e.g. "25/5,25/15"`)
	cmd.Flags().IntVar(&flags.cycles, "cycles", 0, "times to repeat all sections")
	cmd.Flags().IntVar(&flags.countdown, "countdown", 0, "countdown minutes")
	cmd.Flags().IntVar(&flags.volume, "volume", 0, "alarm volume from 0 to 100, 0 disables the bell")
	cmd.Flags().BoolVar(&save, "save", false, "persist the given flags as the new defaults")

	cmd.AddCommand(logCmd())
	return cmd
}

func logCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Print the recent work log",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				return fmt.Errorf("--db is required")
			}
			db, err := sqlite.Open(dbPath)
			if err != nil {
				return err
			}
			defer db.Close() //nolint
			_, dbGetter := txStdLib.NewTransactor(db, txStdLib.NestedTransactionsSavepoints)
			repo := sqlite.NewWorkLogRepo(dbGetter, *log.Default())

			return printWorkLog(cmd.Context(), cmd.OutOrStdout(), repo, days, time.Now())
		},
	}
	cmd.Flags().IntVar(&days, "days", 7, "days of history to print")
	return cmd
}

func printWorkLog(ctx context.Context, w io.Writer, repo pomotimer.WorkLogRepo, days int, now time.Time) error {
	if days < 1 {
		return fmt.Errorf("days must be at least 1, got %d", days)
	}
	since := now.AddDate(0, 0, -days)
	logs, err := repo.GetWorkLogs(ctx, localUser, since)
	if err != nil {
		return err
	}
	if len(logs) == 0 {
		_, err := fmt.Fprintf(w, "No work logged in the last %d days.\n", days)
		return err
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Finished", "Mode", "Minutes")
	total := 0
	for _, l := range logs {
		total += l.Minutes
		t.Row(l.FinishedAt.Local().Format("2006-01-02 15:04"), l.Mode.String(), strconv.Itoa(l.Minutes))
	}
	t.Row("Total", "", strconv.Itoa(total))
	_, err = fmt.Fprintln(w, t.Render())
	return err
}

func settingsPath() (string, error) {
	if settingsFile != "" {
		return settingsFile, nil
	}
	return localsettings.ResolvePath(appName)
}

// setupLogging keeps log output off the terminal the program draws on.
func setupLogging() (func(), error) {
	if logFile == "" {
		log.SetOutput(io.Discard)
		return func() {}, nil
	}
	f, err := tea.LogToFile(logFile, appName)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	log.SetOutput(f)
	log.SetLevel(log.DebugLevel)
	log.SetReportCaller(true)
	return func() { _ = f.Close() }, nil
}

type timerFlags struct {
	mode      string
	sections  string
	cycles    int
	countdown int
	volume    int
}

// apply overlays the flags that were set on cfg.
func (f timerFlags) apply(cfg pomotimer.TimerConfig, changed func(name string) bool) (pomotimer.TimerConfig, error) {
	cfg = cfg.Clone()
	if changed("mode") {
		mode, err := pomotimer.ParseDisplayMode(f.mode)
		if err != nil {
			return cfg, err
		}
		cfg.DisplayMode = mode
	}
	if changed("sections") {
		sections, err := pomotimer.ParseSections(f.sections)
		if err != nil {
			return cfg, err
		}
		cfg.Sections = sections
	}
	if changed("cycles") {
		cfg.TotalCycles = f.cycles
	}
	if changed("countdown") {
		cfg.Countdown = time.Duration(f.countdown) * time.Minute
	}
	if changed("volume") {
		cfg.AlarmVolume = float64(f.volume) / 100
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
