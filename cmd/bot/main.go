package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	txStdLib "github.com/Thiht/transactor/stdlib"
	dg "github.com/bwmarrin/discordgo"
	"github.com/charmbracelet/log"

	"github.com/benjamonnguyen/pomotimer"
	"github.com/benjamonnguyen/pomotimer/discordgo"
	"github.com/benjamonnguyen/pomotimer/sqlite"
	"github.com/benjamonnguyen/pomotimer/timer"
)

const (
	RepoURL = "https://github.com/benjamonnguyen/pomotimer"
	Version = "0.1.0"
)

var isProd bool

func main() {
	flag.BoolVar(&isProd, "prod", false, "")
	flag.Parse()

	topCtx, topCtxC := context.WithCancel(context.Background())

	// config
	cfg, err := pomotimer.LoadConfig(isProd, true)
	if err != nil {
		log.Fatal(err)
	}

	// logger
	log.SetLevel(cfg.LogLevel)
	log.SetReportCaller(true)

	// db
	log.Info("opening db", "url", cfg.DatabaseURL)
	db, err := sqlite.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed database open", "err", err)
	}
	defer db.Close() //nolint

	tx, dbGetter := txStdLib.NewTransactor(
		db,
		txStdLib.NestedTransactionsSavepoints,
	)
	workLogRepo := sqlite.NewWorkLogRepo(dbGetter, *log.Default())
	settingsRepo := sqlite.NewSettingsRepo(dbGetter, *log.Default())

	// set up discord cl
	cl, err := dg.New("Bot " + cfg.BotToken)
	if err != nil {
		log.Fatal(err)
	}
	cl.Identify.Intents = dg.IntentsGuilds | dg.IntentsGuildVoiceStates
	cl.ShouldRetryOnRateLimit = false
	cl.Client = &http.Client{Timeout: (20 * time.Second)}
	cl.UserAgent = fmt.Sprintf("%s (%s, v%s)", cfg.BotName, RepoURL, Version)
	cl.ShouldReconnectVoiceOnSessionError = true

	dm := NewDiscordMessenger(cl)
	discordAdapter := discordgo.NewDiscordAdapter(cl, *log.Default())
	opusAudioLoader, err := newOpusAudioLoader(map[timer.Alarm]string{
		timer.WorkAlarm:     cfg.WorkSoundPath,
		timer.BreakAlarm:    cfg.BreakSoundPath,
		timer.FinishedAlarm: cfg.FinishedSoundPath,
	})
	panicif(err)

	// sink
	sink := newBotSink(topCtx, botSinkDeps{
		repo: workLogRepo,
		tx:   tx,
		notify: func(cID pomotimer.TextChannelID, content string) error {
			_, err := dm.SendChannelMessage(cID, TextDisplay(content))
			return err
		},
		loadOpusAudio: opusAudioLoader.Load,
		sendOpusAudio: discordAdapter.SendOpusAudio,
	})

	// timer manager
	timerManager := NewTimerManager(topCtx, sink.ForTimer, TimerManagerConfig{})
	timerManager.OnTimerUpdate(func(ctx context.Context, t Timer) {
		_, err := dm.EditChannelMessage(t.TextCID, t.MessageID, TimerMessageComponents(t)...)
		if err != nil {
			log.Error("failed to edit discord channel message", "channelID", t.TextCID, "messageID", t.MessageID, "err", err)
		}
		if !t.Ended {
			return
		}

		// on end
		if err := cl.ChannelMessageUnpin(string(t.TextCID), t.MessageID); err != nil {
			log.Error("failed to unpin discord channel message", "channelID", t.TextCID, "messageID", t.MessageID, "err", err)
		}
		if t.VoiceCID != "" && timerManager.GuildTimerCnt(t.GuildID) == 0 {
			if err := discordAdapter.Disconnect(t.GuildID); err != nil {
				log.Error("failed voice disconnect", "guildID", t.GuildID, "err", err)
			}
		}
	})

	// discord event hooks
	cl.AddHandler(func(s *dg.Session, m *dg.InteractionCreate) {
		_ = StartTimer(topCtx, timerManager, settingsRepo, discordAdapter, dm, s, m) ||
			TogglePause(timerManager, dm, m) ||
			SkipPhase(timerManager, dm, m) ||
			FinishWork(timerManager, dm, m) ||
			StopTimer(timerManager, dm, m) ||
			SaveSettings(topCtx, settingsRepo, dm, m) ||
			ShowStats(topCtx, workLogRepo, dm, m)
	})

	// open connection
	if err := cl.Open(); err != nil {
		log.Fatal("Error opening connection", "err", err)
	}
	log.Info(cfg.BotName + " running. Press CTRL-C to exit.")

	// graceful shutdown
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc
	log.Info("terminating " + cfg.BotName)
	shutdownTimeout, shutdownTimeoutC := context.WithTimeout(context.Background(), time.Minute)
	go func() {
		// to ensure proper shutdown ordering...
		if err := timerManager.Shutdown(); err != nil {
			log.Error(err)
		}
		sink.Wait()
		topCtxC()
		discordAdapter.DisconnectAll()
		if err := cl.Close(); err != nil {
			log.Error(err)
		}
		shutdownTimeoutC()
	}()
	<-shutdownTimeout.Done()
	if shutdownTimeout.Err() != context.Canceled {
		log.Error("failed to shut down gracefully", "err", shutdownTimeout.Err())
	}
}

func panicif(err error) {
	if err != nil {
		panic(err)
	}
}
