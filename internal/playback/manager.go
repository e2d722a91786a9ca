package playback

import (
	"context"
	"errors"
	"sync"
	"time"

	"vidlink-backend/internal/apperr"
	"vidlink-backend/internal/models"
	"vidlink-backend/internal/validation"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrSessionNotFound = apperr.New(apperr.NotFound, "Watch session not found.")
	ErrTooManySessions = apperr.New(apperr.Busy, "Too many people are watching right now. Please try again shortly.")
	ErrClosed          = apperr.New(apperr.Busy, "Playback is restarting. Please reload the video.")
)

const (
	EventReady    = "ready"
	EventStarted  = "started"
	EventProgress = "progress"
	EventSeek     = "seek"
	EventPlay     = "play"
	EventPause    = "pause"
	EventSelect   = "select"
	EventUnload   = "unload"
)

const (
	OpSeek  = "seek"
	OpPlay  = "play"
	OpPause = "pause"
)

const (
	defaultIdleTimeout = 10 * time.Minute
	defaultMaxSessions = 10000
	flushTimeout       = 5 * time.Second
)

// Limits bounds how long an unattended session lives and how many can be open.
type Limits struct {
	Idle        time.Duration
	MaxSessions int
}

// Event is a player or viewer event sent by the client.
type Event struct {
	Type  string  `json:"type" validate:"required,oneof=ready started progress seek play pause select unload"`
	Time  float64 `json:"time" validate:"gte=0"`
	Index int     `json:"index" validate:"gte=0"`
}

// Command is an instruction for the client's player.
type Command struct {
	Op   string  `json:"op"`
	Time float64 `json:"time,omitempty"`
}

// Response carries what the client must apply after an event.
type Response struct {
	Commands []Command `json:"commands"`
	Notices  []string  `json:"notices"`
	Snapshot Snapshot  `json:"snapshot"`
}

// queue buffers player commands and notices until the client's next event.
type queue struct {
	mu       sync.Mutex
	commands []Command
	notices  []string
}

func (q *queue) Seek(seconds float64) {
	q.mu.Lock()
	q.commands = append(q.commands, Command{Op: OpSeek, Time: seconds})
	q.mu.Unlock()
}

func (q *queue) SetPlaying(playing bool) {
	op := OpPause
	if playing {
		op = OpPlay
	}
	q.mu.Lock()
	q.commands = append(q.commands, Command{Op: op})
	q.mu.Unlock()
}

func (q *queue) Error(message string) {
	q.mu.Lock()
	q.notices = append(q.notices, message)
	q.mu.Unlock()
}

func (q *queue) drain() ([]Command, []string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	cmds, notes := q.commands, q.notices
	q.commands, q.notices = nil, nil
	if cmds == nil {
		cmds = []Command{}
	}
	if notes == nil {
		notes = []string{}
	}
	return cmds, notes
}

type session struct {
	id       uuid.UUID
	videoID  uuid.UUID
	tracker  *Tracker
	queue    *queue
	ctx      context.Context
	cancel   context.CancelFunc
	lastSeen time.Time
}

// Manager hosts watch sessions for viewers whose player reports events over HTTP.
type Manager struct {
	reporter Reporter
	opts     Options
	idle     time.Duration
	max      int
	log      *logrus.Logger
	now      func() time.Time

	// wg.Add only happens under mu while closed is false
	mu       sync.Mutex
	sessions map[uuid.UUID]*session
	closed   bool
	wg       sync.WaitGroup
}

func NewManager(r Reporter, opts Options, limits Limits, log *logrus.Logger) *Manager {
	if limits.Idle <= 0 {
		limits.Idle = defaultIdleTimeout
	}
	if limits.MaxSessions <= 0 {
		limits.MaxSessions = defaultMaxSessions
	}
	return &Manager{
		reporter: r,
		opts:     opts,
		idle:     limits.Idle,
		max:      limits.MaxSessions,
		log:      log,
		now:      time.Now,
		sessions: make(map[uuid.UUID]*session),
	}
}

// Open starts a watch session for a video with the given cards. It fails once the
// session cap is reached or the manager is closed.
func (m *Manager) Open(videoID uuid.UUID, cards []models.Card) (uuid.UUID, error) {
	q := &queue{}
	ctx, cancel := context.WithCancel(context.Background())
	s := &session{
		id:       uuid.New(),
		videoID:  videoID,
		tracker:  NewTracker(videoID, cards, q, q, m.reporter, m.opts),
		queue:    q,
		ctx:      ctx,
		cancel:   cancel,
		lastSeen: m.now(),
	}

	m.mu.Lock()
	switch {
	case m.closed:
		m.mu.Unlock()
		cancel()
		return uuid.Nil, ErrClosed
	case len(m.sessions) >= m.max:
		m.mu.Unlock()
		cancel()
		m.log.WithField("open", m.max).Warn("watch session cap reached")
		return uuid.Nil, ErrTooManySessions
	}
	m.sessions[s.id] = s
	m.mu.Unlock()

	m.log.WithFields(logrus.Fields{"session_id": s.id, "video_id": videoID}).Debug("watch session opened")
	return s.id, nil
}

// Handle applies ev to session sid and returns the queued player commands.
func (m *Manager) Handle(ctx context.Context, sid uuid.UUID, ev Event) (*Response, error) {
	if err := validation.Struct(ev); err != nil {
		return nil, apperr.Invalid(err.Error())
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrClosed
	}
	s, ok := m.sessions[sid]
	if !ok {
		m.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	s.lastSeen = m.now()
	switch ev.Type {
	case EventReady:
		m.wg.Add(1)
	case EventUnload:
		m.wg.Add(1)
		delete(m.sessions, sid)
		s.cancel()
	}
	m.mu.Unlock()

	tr := s.tracker
	switch ev.Type {
	case EventReady:
		go func() {
			defer m.wg.Done()
			if err := tr.Ready(s.ctx); err != nil && !errors.Is(err, context.Canceled) {
				m.log.WithError(err).WithField("session_id", sid).Warn("player ready wait failed")
			}
		}()
	case EventStarted:
		tr.Started()
	case EventProgress:
		tr.Progress(ev.Time)
	case EventSeek:
		tr.SeekStart()
	case EventPlay:
		tr.Play()
	case EventPause:
		tr.Pause()
	case EventSelect:
		if err := tr.SelectCard(ev.Index); err != nil {
			return nil, apperr.Invalid("No card at that position.")
		}
	case EventUnload:
		go m.flushTracked(s)
	}

	cmds, notes := s.queue.drain()
	return &Response{Commands: cmds, Notices: notes, Snapshot: tr.Snapshot()}, nil
}

// flushTracked reports the session's watch time; the caller did wg.Add.
func (m *Manager) flushTracked(s *session) {
	defer m.wg.Done()
	m.flush(s)
}

func (m *Manager) flush(s *session) {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()

	seconds, err := s.tracker.Flush(ctx)
	entry := m.log.WithFields(logrus.Fields{"session_id": s.id, "video_id": s.videoID, "seconds": seconds})
	if err != nil {
		entry.WithError(err).Debug("watch time report dropped")
		return
	}
	entry.Debug("watch session flushed")
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// reap flushes and drops sessions idle since before now-idle.
func (m *Manager) reap(now time.Time) int {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return 0
	}
	var stale []*session
	for id, s := range m.sessions {
		if now.Sub(s.lastSeen) > m.idle {
			delete(m.sessions, id)
			s.cancel()
			stale = append(stale, s)
		}
	}
	m.wg.Add(len(stale))
	m.mu.Unlock()

	for _, s := range stale {
		go m.flushTracked(s)
	}
	return len(stale)
}

// Run reaps idle sessions until ctx is done, then closes the manager.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.idle / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			m.Close()
			return
		case now := <-ticker.C:
			if n := m.reap(now); n > 0 {
				m.log.WithField("count", n).Info("reaped idle watch sessions")
			}
		}
	}
}

// Close flushes every open session and waits for pending reports. Later events
// and opens fail with ErrClosed.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	open := make([]*session, 0, len(m.sessions))
	for id, s := range m.sessions {
		delete(m.sessions, id)
		s.cancel()
		open = append(open, s)
	}
	m.mu.Unlock()

	for _, s := range open {
		m.flush(s)
	}
	m.wg.Wait()
}
