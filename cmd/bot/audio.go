package main

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/benjamonnguyen/pomotimer/timer"
)

// newOpusAudioLoader reads a DCA style opus container per alarm: each frame is an
// int16 little endian length followed by the encoded packet.
func newOpusAudioLoader(alarmToOpusContainerPath map[timer.Alarm]string) (*opusAudioLoader, error) {
	audioPackets := make(map[timer.Alarm][][]byte)
	for alarm, opusContainerPath := range alarmToOpusContainerPath {
		if opusContainerPath == "" {
			log.Info("no opusContainerPath - skip loading", "alarm", alarm)
			continue
		}
		log.Info("loading packets", "alarm", alarm, "opusContainerPath", opusContainerPath)
		f, err := os.Open(opusContainerPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s audio: %w", alarm, err)
		}
		packets, err := readOpusPackets(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s audio: %w", alarm, err)
		}
		audioPackets[alarm] = packets
	}
	return &opusAudioLoader{
		audioPackets: audioPackets,
	}, nil
}

func readOpusPackets(r io.Reader) ([][]byte, error) {
	var packets [][]byte
	var frameLen int16
	for {
		if err := binary.Read(r, binary.LittleEndian, &frameLen); err != nil {
			if errors.Is(err, io.EOF) {
				return packets, nil
			}
			return nil, err
		}
		if frameLen < 0 {
			return nil, fmt.Errorf("negative frame length %d", frameLen)
		}

		packet := make([]byte, frameLen)
		if _, err := io.ReadFull(r, packet); err != nil {
			// Should not be any end of file errors
			return nil, err
		}
		packets = append(packets, packet)
	}
}

type opusAudioLoader struct {
	audioPackets map[timer.Alarm][][]byte
}

// Load returns nil when no audio is configured for alarm.
func (m *opusAudioLoader) Load(alarm timer.Alarm) [][]byte {
	return m.audioPackets[alarm]
}
