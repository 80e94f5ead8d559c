package display

import (
	"fmt"
	"sync"
	"time"

	"sign-tools/sign-go-display/config"
	"sign-tools/sign-go-display/eventlog"
	"sign-tools/sign-go-display/words"
)

// Output is the committed result of one evaluation tick: what the sign is
// showing right now.
type Output struct {
	Mode        Mode
	Message     *ActiveMessage       // head of the resolver ranking, nil if nothing to show
	ActiveCount int                  // size of the full ranking
	Video       *config.VideoConfig  // current playlist entry when Mode == ModeVideo
	VideoIndex  int
	VideoCount  int
	Generated   time.Time
}

// FeedInfo describes the last packet received from the PLC feed.
type FeedInfo struct {
	Timestamp string
	Hex       string
	Count     uint64
}

// SignState holds the controller's live data. The feed replaces the
// snapshot, the reloader replaces the config, the scheduler commits the
// output; every reader works on a copied view taken under the lock, so one
// tick always sees a consistent point-in-time state.
type SignState struct {
	mu        sync.Mutex
	appConfig *config.AppConfig
	snapshot  words.Snapshot
	current   Output
	lastRx    FeedInfo
	status    string

	EventChan chan<- eventlog.Event
}

func NewSignState(eventChan chan<- eventlog.Event, appConfig *config.AppConfig) *SignState {
	return &SignState{
		appConfig: appConfig,
		snapshot:  make(words.Snapshot),
		status:    "Initializing...",
		EventChan: eventChan,
	}
}

// ReplaceSnapshot publishes the newest register snapshot. Older snapshots
// are dropped; consumers always see the freshest value.
func (s *SignState) ReplaceSnapshot(snap words.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snap
}

// ReplaceConfig installs a full-replacement configuration snapshot.
func (s *SignState) ReplaceConfig(cfg *config.AppConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appConfig = cfg
}

// View returns a consistent copy of everything one evaluation tick needs.
// The snapshot is cloned so later feed writes cannot race the evaluation.
func (s *SignState) View() (words.Snapshot, *config.AppConfig, Output, FeedInfo, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot.Clone(), s.appConfig, s.current, s.lastRx, s.status
}

// CommitOutput atomically installs the result of a tick.
func (s *SignState) CommitOutput(out Output) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = out
}

func (s *SignState) SetStatus(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

// UpdateRx records feed activity for the status pane.
func (s *SignState) UpdateRx(data []byte, rxTime time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRx.Timestamp = rxTime.Format("15:04:05.000")
	if len(data) > 16 {
		s.lastRx.Hex = fmt.Sprintf("%X...", data[:16])
	} else {
		s.lastRx.Hex = fmt.Sprintf("%X", data)
	}
	s.lastRx.Count++
}
