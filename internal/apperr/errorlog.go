package apperr

import (
	"sync"
	"time"
)

// DefaultLogCapacity is how many failures the error log keeps.
const DefaultLogCapacity = 50

// LogEntry is one recorded backend failure.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	UserID    string    `json:"userId,omitempty"`
	Message   string    `json:"message"`
	Detail    string    `json:"detail,omitempty"`
}

// ErrorLog keeps the most recent backend failures, oldest dropped first.
type ErrorLog struct {
	mu       sync.Mutex
	entries  []LogEntry
	capacity int
	now      func() time.Time
}

// NewErrorLog returns a log holding at most capacity entries.
func NewErrorLog(capacity int) *ErrorLog {
	if capacity <= 0 {
		capacity = DefaultLogCapacity
	}
	return &ErrorLog{capacity: capacity, now: time.Now}
}

// Record stores err unless it is a validation error.
func (l *ErrorLog) Record(action, userID string, err error) {
	if err == nil || KindOf(err) == Validation {
		return
	}
	entry := LogEntry{
		Timestamp: l.now(),
		Action:    action,
		UserID:    userID,
		Message:   MessageOf(Wrap(action, err)),
		Detail:    err.Error(),
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	if over := len(l.entries) - l.capacity; over > 0 {
		l.entries = append([]LogEntry(nil), l.entries[over:]...)
	}
}

// Entries returns a copy of the log, oldest first.
func (l *ErrorLog) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}
