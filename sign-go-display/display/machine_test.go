package display

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sign-tools/sign-go-display/config"
)

func playlistOf(durations ...int) []*config.VideoConfig {
	var vids []*config.VideoConfig
	for i, d := range durations {
		vids = append(vids, &config.VideoConfig{
			ID:              int64(i + 1),
			Name:            "video",
			FilePath:        "/videos/clip.mp4",
			DurationSeconds: d,
			Enabled:         true,
			DisplayOrder:    i,
		})
	}
	return vids
}

func TestMachineStartsInMessageMode(t *testing.T) {
	m := NewMachine()
	assert.Equal(t, ModeMessage, m.Mode())
}

func TestMachineStaysInMessageModeWithoutControlBit(t *testing.T) {
	m := NewMachine()
	now := time.Now()
	for i := 0; i < 5; i++ {
		m.Tick(false, playlistOf(5, 3), now.Add(time.Duration(i)*time.Second))
	}
	assert.Equal(t, ModeMessage, m.Mode())
}

func TestMachineEmptyPlaylistKeepsMessageMode(t *testing.T) {
	m := NewMachine()
	m.Tick(true, nil, time.Now())
	assert.Equal(t, ModeMessage, m.Mode())
}

func TestMachineEntersVideoAtFirstEntry(t *testing.T) {
	m := NewMachine()
	now := time.Now()
	m.Tick(true, playlistOf(5, 3), now)

	require.Equal(t, ModeVideo, m.Mode())
	assert.Equal(t, 0, m.VideoIndex())
	assert.Equal(t, now, m.VideoStartedAt())
}

func TestMachineRotationRespectsDurations(t *testing.T) {
	m := NewMachine()
	playlist := playlistOf(5, 3)
	start := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)

	m.Tick(true, playlist, start)
	require.Equal(t, 0, m.VideoIndex())

	// Still inside the first video's 5s window.
	m.Tick(true, playlist, start.Add(4*time.Second))
	assert.Equal(t, 0, m.VideoIndex())

	// 5s elapsed: advance to the second entry.
	m.Tick(true, playlist, start.Add(5*time.Second))
	assert.Equal(t, 1, m.VideoIndex())

	// 3s after that: wrap back to the first.
	m.Tick(true, playlist, start.Add(8*time.Second))
	assert.Equal(t, 0, m.VideoIndex())
}

func TestMachineControlBitDropAbandonsVideo(t *testing.T) {
	m := NewMachine()
	playlist := playlistOf(5, 3)
	start := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)

	m.Tick(true, playlist, start)
	m.Tick(true, playlist, start.Add(5*time.Second))
	require.Equal(t, 1, m.VideoIndex())

	// Bit drops 2s into the second video: back to messages immediately.
	m.Tick(false, playlist, start.Add(7*time.Second))
	assert.Equal(t, ModeMessage, m.Mode())
}

func TestMachineRestartsRotationAtIndexZero(t *testing.T) {
	m := NewMachine()
	playlist := playlistOf(5, 3)
	start := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)

	m.Tick(true, playlist, start)
	m.Tick(true, playlist, start.Add(5*time.Second))
	m.Tick(false, playlist, start.Add(7*time.Second))

	// Re-entry restarts from the head of the playlist.
	m.Tick(true, playlist, start.Add(10*time.Second))
	require.Equal(t, ModeVideo, m.Mode())
	assert.Equal(t, 0, m.VideoIndex())
}

func TestMachineShrunkPlaylistResetsIndex(t *testing.T) {
	m := NewMachine()
	playlist := playlistOf(2, 2, 2)
	start := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)

	m.Tick(true, playlist, start)
	m.Tick(true, playlist, start.Add(2*time.Second))
	m.Tick(true, playlist, start.Add(4*time.Second))
	require.Equal(t, 2, m.VideoIndex())

	// A reload removed two entries while index 2 was playing.
	m.Tick(true, playlistOf(2), start.Add(5*time.Second))
	assert.Equal(t, 0, m.VideoIndex())
	assert.Equal(t, ModeVideo, m.Mode())
}
