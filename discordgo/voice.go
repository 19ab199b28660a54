// Package discordgo provides Discord API adapters using package github.com/bwmarrin/discordgo
package discordgo

import (
	"context"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/charmbracelet/log"

	"github.com/benjamonnguyen/pomotimer"
)

type discordgoAdapter struct {
	cl *discordgo.Session
	l  log.Logger

	// one playback per guild voice connection at a time
	mu     sync.Mutex
	guilds map[string]*sync.Mutex
}

func NewDiscordAdapter(cl *discordgo.Session, l log.Logger) *discordgoAdapter {
	return &discordgoAdapter{
		cl:     cl,
		l:      l,
		guilds: make(map[string]*sync.Mutex),
	}
}

// SendOpusAudio joins cID and streams packets. A nil packets slice is a no-op.
func (w *discordgoAdapter) SendOpusAudio(ctx context.Context, packets [][]byte, gID string, cID pomotimer.VoiceChannelID) error {
	if packets == nil {
		return nil
	}
	unlock := w.lockGuild(gID)
	defer unlock()

	conn, err := w.cl.ChannelVoiceJoin(gID, string(cID), false, true)
	if err != nil {
		return err
	}
	if err := conn.Speaking(true); err != nil {
		return err
	}
	w.l.Debug("sending opus audio", "gid", gID, "cid", cID, "packets", len(packets))
	for _, p := range packets {
		select {
		case <-ctx.Done():
			_ = conn.Speaking(false)
			return ctx.Err()
		case conn.OpusSend <- p:
		}
	}
	return conn.Speaking(false)
}

// VoiceChannel returns the voice channel uID is connected to in gID.
func (w *discordgoAdapter) VoiceChannel(gID, uID string) (pomotimer.VoiceChannelID, error) {
	vs, err := w.cl.State.VoiceState(gID, uID)
	if err != nil {
		return "", err
	}
	return pomotimer.VoiceChannelID(vs.ChannelID), nil
}

func (w *discordgoAdapter) Disconnect(gID string) error {
	w.cl.RLock()
	conn := w.cl.VoiceConnections[gID]
	w.cl.RUnlock()
	if conn == nil {
		return nil
	}
	return conn.Disconnect()
}

// DisconnectAll leaves every voice channel the session is connected to.
func (w *discordgoAdapter) DisconnectAll() {
	w.cl.RLock()
	conns := make([]*discordgo.VoiceConnection, 0, len(w.cl.VoiceConnections))
	for _, conn := range w.cl.VoiceConnections {
		conns = append(conns, conn)
	}
	w.cl.RUnlock()

	var wg sync.WaitGroup
	for _, conn := range conns {
		wg.Go(func() {
			if err := conn.Disconnect(); err != nil {
				w.l.Error("failed voice disconnect", "gid", conn.GuildID, "err", err)
			}
		})
	}
	wg.Wait()
}

func (w *discordgoAdapter) lockGuild(gID string) func() {
	w.mu.Lock()
	l, ok := w.guilds[gID]
	if !ok {
		l = &sync.Mutex{}
		w.guilds[gID] = l
	}
	w.mu.Unlock()
	l.Lock()
	return l.Unlock
}
