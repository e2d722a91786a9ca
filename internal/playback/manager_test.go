package playback

import (
	"context"
	"io"
	"testing"
	"time"

	"vidlink-backend/internal/apperr"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(r Reporter) *Manager {
	log := logrus.New()
	log.SetOutput(io.Discard)
	opts := Options{MaxTime: 240, StartTimeout: 20 * time.Millisecond, SettleDelay: time.Millisecond}
	return NewManager(r, opts, Limits{Idle: time.Minute}, log)
}

func openSession(t *testing.T, m *Manager) uuid.UUID {
	t.Helper()
	sid, err := m.Open(uuid.New(), testCards)
	require.NoError(t, err)
	return sid
}

func TestManagerEventsDrainCommands(t *testing.T) {
	m := newManager(nil)
	ctx := context.Background()
	sid := openSession(t, m)

	res, err := m.Handle(ctx, sid, Event{Type: EventSelect, Index: 1})
	require.NoError(t, err)
	assert.Equal(t, []Command{{Op: OpSeek, Time: 30}, {Op: OpPause}}, res.Commands)
	assert.Empty(t, res.Notices)
	assert.Equal(t, 1, res.Snapshot.Selected)

	res, err = m.Handle(ctx, sid, Event{Type: EventProgress, Time: 31})
	require.NoError(t, err)
	assert.Empty(t, res.Commands)
	assert.Equal(t, 1.0, res.Snapshot.Watched)

	res, err = m.Handle(ctx, sid, Event{Type: EventProgress, Time: 300})
	require.NoError(t, err)
	assert.Equal(t, []Command{{Op: OpPause}, {Op: OpSeek, Time: 0}}, res.Commands)
	assert.Len(t, res.Notices, 1)
}

func TestManagerReadyLoadsInBackground(t *testing.T) {
	m := newManager(nil)
	ctx := context.Background()
	sid := openSession(t, m)

	_, err := m.Handle(ctx, sid, Event{Type: EventReady})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		res, err := m.Handle(ctx, sid, Event{Type: EventStarted})
		return err == nil && res.Snapshot.State == Loaded
	}, time.Second, 5*time.Millisecond)
	m.Close()
}

func TestManagerUnloadFlushes(t *testing.T) {
	r := &fakeReporter{}
	m := newManager(r)
	ctx := context.Background()
	sid := openSession(t, m)

	_, err := m.Handle(ctx, sid, Event{Type: EventProgress, Time: 9})
	require.NoError(t, err)
	_, err = m.Handle(ctx, sid, Event{Type: EventUnload})
	require.NoError(t, err)
	assert.Equal(t, 0, m.Len())

	_, err = m.Handle(ctx, sid, Event{Type: EventPlay})
	assert.ErrorIs(t, err, ErrSessionNotFound)

	m.Close()
	assert.Equal(t, 9.0, r.total())
}

func TestManagerSessionCap(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	m := NewManager(nil, DefaultOptions(), Limits{Idle: time.Minute, MaxSessions: 2}, log)

	first := openSession(t, m)
	openSession(t, m)
	_, err := m.Open(uuid.New(), testCards)
	assert.ErrorIs(t, err, ErrTooManySessions)
	assert.Equal(t, apperr.Busy, apperr.KindOf(err))
	assert.Equal(t, 2, m.Len())

	_, err = m.Handle(context.Background(), first, Event{Type: EventUnload})
	require.NoError(t, err)
	openSession(t, m)
	m.Close()
}

func TestManagerRejectsWorkAfterClose(t *testing.T) {
	r := &fakeReporter{}
	m := newManager(r)
	ctx := context.Background()
	sid := openSession(t, m)
	_, err := m.Handle(ctx, sid, Event{Type: EventProgress, Time: 3})
	require.NoError(t, err)

	m.Close()
	assert.Equal(t, 3.0, r.total())

	_, err = m.Handle(ctx, sid, Event{Type: EventReady})
	assert.ErrorIs(t, err, ErrClosed)
	_, err = m.Open(uuid.New(), testCards)
	assert.ErrorIs(t, err, ErrClosed)
	assert.Equal(t, 0, m.reap(time.Now().Add(time.Hour)))
	m.Close()
}

func TestManagerRejectsBadEvents(t *testing.T) {
	m := newManager(nil)
	ctx := context.Background()
	sid := openSession(t, m)

	_, err := m.Handle(ctx, sid, Event{Type: "rewind"})
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))

	_, err = m.Handle(ctx, sid, Event{Type: EventProgress, Time: -1})
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))

	_, err = m.Handle(ctx, sid, Event{Type: EventSelect, Index: 7})
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))

	_, err = m.Handle(ctx, uuid.New(), Event{Type: EventPlay})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManagerReapsIdleSessions(t *testing.T) {
	r := &fakeReporter{}
	m := newManager(r)
	start := time.Now()
	m.now = func() time.Time { return start }

	idle := openSession(t, m)
	_, err := m.Handle(context.Background(), idle, Event{Type: EventProgress, Time: 4})
	require.NoError(t, err)

	m.now = func() time.Time { return start.Add(50 * time.Second) }
	active := openSession(t, m)

	assert.Equal(t, 1, m.reap(start.Add(90*time.Second)))
	assert.Equal(t, 1, m.Len())

	_, err = m.Handle(context.Background(), active, Event{Type: EventPlay})
	require.NoError(t, err)

	m.Close()
	assert.Equal(t, 0, m.Len())
	assert.Equal(t, 4.0, r.total())
}

func TestManagerRunStopsOnCancel(t *testing.T) {
	r := &fakeReporter{}
	m := newManager(r)
	sid := openSession(t, m)
	_, err := m.Handle(context.Background(), sid, Event{Type: EventProgress, Time: 6})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}
	assert.Equal(t, 6.0, r.total())
}
