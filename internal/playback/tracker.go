// Package playback tracks how long a viewer actually watches a video and keeps the
// player in step with the card the viewer selected.
package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"vidlink-backend/internal/models"

	"github.com/google/uuid"
)

var ErrCardIndex = errors.New("card index out of range")

// Player is the video player being driven.
type Player interface {
	Seek(seconds float64)
	SetPlaying(playing bool)
}

// Notifier shows an error to the viewer.
type Notifier interface {
	Error(message string)
}

// Reporter receives accumulated watch seconds for a video.
type Reporter interface {
	ReportWatchTime(ctx context.Context, videoID uuid.UUID, seconds float64) error
}

type State int

const (
	NotReady State = iota
	Starting
	Loaded
)

func (s State) String() string {
	switch s {
	case Starting:
		return "starting"
	case Loaded:
		return "loaded"
	default:
		return "not_ready"
	}
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

type Options struct {
	MaxTime      float64
	StartTimeout time.Duration
	SettleDelay  time.Duration
}

func DefaultOptions() Options {
	return Options{
		MaxTime:      240,
		StartTimeout: 12 * time.Second,
		SettleDelay:  300 * time.Millisecond,
	}
}

// Snapshot is a read-only view of a tracker.
type Snapshot struct {
	State    State   `json:"state"`
	Watched  float64 `json:"watched"`
	LastTime float64 `json:"lastTime"`
	Seeking  bool    `json:"seeking"`
	Selected int     `json:"selected"`
}

// Tracker is one page view of one video.
type Tracker struct {
	videoID  uuid.UUID
	cards    []models.Card
	player   Player
	notifier Notifier
	reporter Reporter
	opts     Options

	started   chan struct{}
	startOnce sync.Once

	mu       sync.Mutex
	state    State
	watched  float64
	last     float64
	seeking  bool
	selected int
}

func NewTracker(videoID uuid.UUID, cards []models.Card, p Player, n Notifier, r Reporter, opts Options) *Tracker {
	if opts.MaxTime <= 0 {
		opts.MaxTime = DefaultOptions().MaxTime
	}
	return &Tracker{
		videoID:  videoID,
		cards:    append([]models.Card(nil), cards...),
		player:   p,
		notifier: n,
		reporter: r,
		opts:     opts,
		started:  make(chan struct{}),
	}
}

// Ready handles the player's ready event. It forces playback until the player
// reports it started (or StartTimeout passes), lets the player settle, then seeks
// to the first card. Ready blocks until loading completes or ctx is done.
func (t *Tracker) Ready(ctx context.Context) error {
	t.mu.Lock()
	if t.state != NotReady {
		t.mu.Unlock()
		return nil
	}
	t.state = Starting
	t.player.SetPlaying(true)
	t.mu.Unlock()

	if err := wait(ctx, t.started, t.opts.StartTimeout); err != nil {
		return err
	}

	t.mu.Lock()
	t.player.SetPlaying(false)
	t.mu.Unlock()

	if err := wait(ctx, nil, t.opts.SettleDelay); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.cards) > 0 {
		t.player.Seek(t.cards[0].Start)
		t.last = t.cards[0].Start
	}
	t.state = Loaded
	return nil
}

// wait returns when done is closed, d elapses, or ctx ends (the only error case).
func wait(ctx context.Context, done <-chan struct{}, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-done:
	case <-timer.C:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// Started handles the player's first playback-started event.
func (t *Tracker) Started() {
	t.startOnce.Do(func() { close(t.started) })
}

// SelectCard seeks to card k and pauses there.
func (t *Tracker) SelectCard(k int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if k < 0 || k >= len(t.cards) {
		return fmt.Errorf("%w: %d", ErrCardIndex, k)
	}
	start := t.cards[k].Start
	t.player.Seek(start)
	t.player.SetPlaying(false)
	t.selected = k
	t.last = start
	return nil
}

// Progress handles a playback time tick. Past MaxTime playback is halted and
// rewound; otherwise forward movement outside a scrub counts as watched.
func (t *Tracker) Progress(current float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if current > t.opts.MaxTime {
		t.player.SetPlaying(false)
		t.player.Seek(0)
		t.last = 0
		t.notifier.Error(fmt.Sprintf("Only the first %g seconds of this video can be played.", t.opts.MaxTime))
		return
	}
	if !t.seeking && current < t.opts.MaxTime {
		if d := current - t.last; d > 0 {
			t.watched += d
		}
	}
	t.last = current
}

// SeekStart marks the viewer dragging the scrub bar.
func (t *Tracker) SeekStart() {
	t.mu.Lock()
	t.seeking = true
	t.mu.Unlock()
}

func (t *Tracker) Play() {
	t.mu.Lock()
	t.seeking = false
	t.mu.Unlock()
}

func (t *Tracker) Pause() {
	t.mu.Lock()
	t.seeking = false
	t.mu.Unlock()
}

// Flush reports the accumulated watch time and resets it. The amount is dropped
// whether or not the report succeeds.
func (t *Tracker) Flush(ctx context.Context) (float64, error) {
	t.mu.Lock()
	seconds := t.watched
	t.watched = 0
	t.mu.Unlock()

	if seconds <= 0 || t.reporter == nil {
		return seconds, nil
	}
	return seconds, t.reporter.ReportWatchTime(ctx, t.videoID, seconds)
}

func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Snapshot{
		State:    t.state,
		Watched:  t.watched,
		LastTime: t.last,
		Seeking:  t.seeking,
		Selected: t.selected,
	}
}
