package display

import (
	"time"

	"sign-tools/sign-go-display/config"
)

// Mode is the display's operating mode. The machine is always in exactly
// one of the two; there is no transitional state.
type Mode int

const (
	ModeMessage Mode = iota
	ModeVideo
)

func (m Mode) String() string {
	if m == ModeVideo {
		return "video"
	}
	return "message"
}

// Machine arbitrates between the rotating video loop and the bit-message
// view. It is driven once per evaluation tick by a single goroutine and
// holds only the mode decision and the rotation clock.
type Machine struct {
	mode           Mode
	videoIndex     int
	videoStartedAt time.Time
}

func NewMachine() *Machine {
	return &Machine{mode: ModeMessage}
}

// Tick advances the machine. controlBit is the current value of the
// configured control bit (a missing register reads as 0), playlist is the
// enabled-video rotation sequence, now is the tick's wall clock.
func (m *Machine) Tick(controlBit bool, playlist []*config.VideoConfig, now time.Time) {
	if !controlBit || len(playlist) == 0 {
		// In-progress videos are abandoned, not drained.
		m.mode = ModeMessage
		return
	}

	if m.mode == ModeMessage {
		m.mode = ModeVideo
		m.videoIndex = 0
		m.videoStartedAt = now
		return
	}

	// A config reload can shrink the playlist mid-state.
	if m.videoIndex >= len(playlist) {
		m.videoIndex = 0
		m.videoStartedAt = now
		return
	}

	current := playlist[m.videoIndex]
	if now.Sub(m.videoStartedAt) >= time.Duration(current.DurationSeconds)*time.Second {
		m.videoIndex = (m.videoIndex + 1) % len(playlist)
		m.videoStartedAt = now
	}
}

func (m *Machine) Mode() Mode                { return m.mode }
func (m *Machine) VideoIndex() int           { return m.videoIndex }
func (m *Machine) VideoStartedAt() time.Time { return m.videoStartedAt }
