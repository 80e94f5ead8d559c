package display

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	"sign-tools/sign-go-display/config"
	"sign-tools/sign-go-display/eventlog"
	"sign-tools/sign-go-display/store"
)

// Publisher receives committed outputs, e.g. for MQTT telemetry. Implementations
// must not block the evaluation tick.
type Publisher interface {
	PublishOutput(Output)
}

// RunEvaluator is the single evaluation loop. Once per tick it takes a
// consistent view of snapshot and config, drives the mode machine, resolves
// the active bit messages and commits the new output atomically. It is the
// only writer of the display output.
func RunEvaluator(ctx context.Context, wg *sync.WaitGroup, state *SignState, logger *log.Logger, pub Publisher) {
	defer wg.Done()
	logger.Println("Evaluator Goroutine Started.")

	machine := NewMachine()
	ticker := time.NewTicker(time.Duration(config.DefaultEvalIntervalS * float64(time.Second)))
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			snap, cfg, previous, _, _ := state.View()
			if cfg == nil {
				continue
			}

			// A missing control-bit register reads as 0: fail toward
			// the message-only mode, never toward a crash.
			controlBit := snap.Bit(cfg.ControlBit.WordIndex, cfg.ControlBit.BitIndex)
			playlist := cfg.EnabledVideos()

			machine.Tick(controlBit, playlist, now)

			active := Resolve(snap, cfg.Bits)
			out := Output{
				Mode:        machine.Mode(),
				ActiveCount: len(active),
				VideoCount:  len(playlist),
				Generated:   now,
			}
			if len(active) > 0 {
				head := active[0]
				out.Message = &head
			}
			if out.Mode == ModeVideo && machine.VideoIndex() < len(playlist) {
				out.Video = playlist[machine.VideoIndex()]
				out.VideoIndex = machine.VideoIndex()
			}

			logTransitions(state, logger, previous, out)
			state.CommitOutput(out)
			if pub != nil && outputChanged(previous, out) {
				pub.PublishOutput(out)
			}

		case <-ctx.Done():
			logger.Println("Evaluator Goroutine shutting down.")
			return
		}
	}
}

func logTransitions(state *SignState, logger *log.Logger, previous, next Output) {
	now := next.Generated
	if previous.Mode != next.Mode {
		detail := ""
		if next.Mode == ModeVideo && next.Video != nil {
			detail = fmt.Sprintf("video: %s", next.Video.Name)
		}
		logger.Printf("SOE: [MODE_CHANGE] %s -> %s %s", previous.Mode, next.Mode, detail)
		state.EventChan <- eventlog.Event{
			Timestamp: now, Level: "info", Category: "display",
			Message: fmt.Sprintf("Mode changed to %s", next.Mode), Details: detail,
		}
	}
	if messageText(previous) != messageText(next) {
		logger.Printf("SOE: [MESSAGE_CHANGE] %q -> %q", messageText(previous), messageText(next))
		state.EventChan <- eventlog.Event{
			Timestamp: now, Level: "info", Category: "display",
			Message: "Shown message changed", Details: messageText(next),
		}
	}
	if next.Mode == ModeVideo && previous.Mode == ModeVideo && previous.VideoIndex != next.VideoIndex {
		name := ""
		if next.Video != nil {
			name = next.Video.Name
		}
		logger.Printf("SOE: [VIDEO_ADVANCE] index %d -> %d (%s)", previous.VideoIndex, next.VideoIndex, name)
	}
}

func messageText(out Output) string {
	if out.Message == nil {
		return ""
	}
	return out.Message.Text
}

func outputChanged(previous, next Output) bool {
	if previous.Mode != next.Mode || previous.VideoIndex != next.VideoIndex {
		return true
	}
	return messageText(previous) != messageText(next)
}

// RunConfigReloader refreshes the configuration from the store on its own,
// slower cadence. The load is a full replacement; a failed load keeps the
// previous configuration in place.
func RunConfigReloader(ctx context.Context, wg *sync.WaitGroup, state *SignState, db *sql.DB, logger *log.Logger) {
	defer wg.Done()
	logger.Println("Config Reloader Goroutine Started.")

	ticker := time.NewTicker(time.Duration(config.DefaultReloadIntervalS * float64(time.Second)))
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cfg, err := store.Load(db)
			if err != nil {
				logger.Printf("ERROR: Config reload failed, keeping previous config: %v", err)
				continue
			}
			state.ReplaceConfig(cfg)
			logger.Printf("Config reloaded: %d bits, %d videos, control bit Word[%d].%d",
				len(cfg.Bits), len(cfg.Videos), cfg.ControlBit.WordIndex, cfg.ControlBit.BitIndex)

		case <-ctx.Done():
			logger.Println("Config Reloader Goroutine shutting down.")
			return
		}
	}
}
