package playback

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"vidlink-backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlayer struct {
	mu      sync.Mutex
	seeks   []float64
	playing []bool
	notices []string
}

func (p *fakePlayer) Seek(s float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seeks = append(p.seeks, s)
}

func (p *fakePlayer) SetPlaying(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = append(p.playing, v)
}

func (p *fakePlayer) Error(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notices = append(p.notices, msg)
}

func (p *fakePlayer) lastPlaying() (bool, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.playing) == 0 {
		return false, false
	}
	return p.playing[len(p.playing)-1], true
}

type fakeReporter struct {
	mu    sync.Mutex
	calls []float64
	err   error
}

func (r *fakeReporter) ReportWatchTime(_ context.Context, _ uuid.UUID, s float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, s)
	return r.err
}

func (r *fakeReporter) total() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum float64
	for _, s := range r.calls {
		sum += s
	}
	return sum
}

var testCards = []models.Card{
	{ID: "a", Name: "Intro", Start: 4},
	{ID: "b", Name: "Shop", Start: 30},
	{ID: "c", Name: "Outro", Start: 90},
}

func newTracker(r Reporter) (*Tracker, *fakePlayer) {
	p := &fakePlayer{}
	opts := Options{MaxTime: 240, StartTimeout: 50 * time.Millisecond, SettleDelay: time.Millisecond}
	return NewTracker(uuid.New(), testCards, p, p, r, opts), p
}

func TestProgressPastMaxTimeHalts(t *testing.T) {
	tr, p := newTracker(nil)

	tr.Progress(241)

	assert.Equal(t, []float64{0}, p.seeks)
	assert.Equal(t, []bool{false}, p.playing)
	assert.Len(t, p.notices, 1)
	assert.Equal(t, 0.0, tr.Snapshot().LastTime)
}

func TestProgressAtMaxTimeDoesNotHalt(t *testing.T) {
	tr, p := newTracker(nil)

	tr.Progress(240)

	assert.Empty(t, p.seeks)
	assert.Empty(t, p.playing)
	assert.Empty(t, p.notices)
}

func TestWatchTimeMonotonic(t *testing.T) {
	tr, _ := newTracker(nil)

	prev := 0.0
	for _, tick := range []float64{1, 2, 5, 3, 4, 10, 10, 0, 7} {
		tr.Progress(tick)
		got := tr.Snapshot().Watched
		assert.GreaterOrEqual(t, got, prev, "tick %v", tick)
		prev = got
	}
	// 1+1+3 (5->3 ignored) +1+6 (10->0 ignored) +7
	assert.InDelta(t, 19.0, prev, 1e-9)
}

func TestNoAccrualWhileSeeking(t *testing.T) {
	tr, _ := newTracker(nil)
	tr.Progress(5)
	before := tr.Snapshot().Watched

	tr.SeekStart()
	tr.Progress(60)
	tr.Progress(2)
	assert.Equal(t, before, tr.Snapshot().Watched)
	assert.True(t, tr.Snapshot().Seeking)

	tr.Play()
	tr.Progress(3)
	assert.Equal(t, before+1, tr.Snapshot().Watched)

	tr.SeekStart()
	tr.Pause()
	assert.False(t, tr.Snapshot().Seeking)
}

func TestNoAccrualAtOrPastMaxTime(t *testing.T) {
	tr, _ := newTracker(nil)
	tr.Progress(239)
	w := tr.Snapshot().Watched

	tr.Progress(240)
	assert.Equal(t, w, tr.Snapshot().Watched)
}

func TestSelectCard(t *testing.T) {
	tr, p := newTracker(nil)

	for k, c := range testCards {
		require.NoError(t, tr.SelectCard(k))
		assert.Equal(t, c.Start, p.seeks[len(p.seeks)-1])
		playing, ok := p.lastPlaying()
		require.True(t, ok)
		assert.False(t, playing)
		assert.Equal(t, k, tr.Snapshot().Selected)
	}

	assert.ErrorIs(t, tr.SelectCard(3), ErrCardIndex)
	assert.ErrorIs(t, tr.SelectCard(-1), ErrCardIndex)
}

func TestSelectCardDoesNotCountJump(t *testing.T) {
	tr, _ := newTracker(nil)
	tr.Progress(2)
	require.NoError(t, tr.SelectCard(2))
	tr.Progress(91)

	assert.InDelta(t, 3.0, tr.Snapshot().Watched, 1e-9)
}

func TestReadyWaitsForStart(t *testing.T) {
	tr, p := newTracker(nil)
	tr.opts.StartTimeout = time.Hour

	done := make(chan error, 1)
	go func() { done <- tr.Ready(context.Background()) }()

	require.Eventually(t, func() bool { return tr.Snapshot().State == Starting }, time.Second, time.Millisecond)
	playing, _ := p.lastPlaying()
	assert.True(t, playing)

	tr.Started()
	tr.Started()
	require.NoError(t, <-done)

	assert.Equal(t, Loaded, tr.Snapshot().State)
	assert.Equal(t, []bool{true, false}, p.playing)
	assert.Equal(t, []float64{testCards[0].Start}, p.seeks)
	assert.Equal(t, testCards[0].Start, tr.Snapshot().LastTime)
}

func TestReadyTimesOut(t *testing.T) {
	tr, p := newTracker(nil)

	require.NoError(t, tr.Ready(context.Background()))
	assert.Equal(t, Loaded, tr.Snapshot().State)
	assert.Equal(t, []float64{4}, p.seeks)

	require.NoError(t, tr.Ready(context.Background()))
	assert.Len(t, p.seeks, 1)
}

func TestReadyCancelled(t *testing.T) {
	tr, _ := newTracker(nil)
	tr.opts.StartTimeout = time.Hour
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, tr.Ready(ctx), context.Canceled)
	assert.Equal(t, Starting, tr.Snapshot().State)
}

func TestFlushResets(t *testing.T) {
	r := &fakeReporter{}
	tr, _ := newTracker(r)
	tr.Progress(12.5)

	n, err := tr.Flush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12.5, n)
	assert.Equal(t, 0.0, tr.Snapshot().Watched)

	n, err = tr.Flush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.0, n)
	assert.Equal(t, []float64{12.5}, r.calls)
}

func TestFlushDropsOnFailure(t *testing.T) {
	r := &fakeReporter{err: errors.New("offline")}
	tr, _ := newTracker(r)
	tr.Progress(8)

	_, err := tr.Flush(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 0.0, tr.Snapshot().Watched)
}
