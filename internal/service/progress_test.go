package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProgressTrackerKeepsFinalPercent(t *testing.T) {
	p := NewProgressTracker()
	start := time.Now()
	p.now = func() time.Time { return start }

	pct, active := p.Get("u1")
	assert.Equal(t, 0, pct)
	assert.False(t, active)

	p.Set("u1", 0)
	p.Set("u1", 55)
	pct, active = p.Get("u1")
	assert.Equal(t, 55, pct)
	assert.True(t, active)

	p.Set("u1", 100)
	p.Done("u1")
	pct, active = p.Get("u1")
	assert.Equal(t, 100, pct)
	assert.False(t, active)

	p.now = func() time.Time { return start.Add(p.Linger + time.Second) }
	pct, active = p.Get("u1")
	assert.Equal(t, 0, pct)
	assert.False(t, active)
}

func TestProgressTrackerNewTransferRestarts(t *testing.T) {
	p := NewProgressTracker()
	p.Set("u1", 100)
	p.Done("u1")

	p.Set("u1", 3)
	pct, active := p.Get("u1")
	assert.Equal(t, 3, pct)
	assert.True(t, active)

	p.Done("u2")
	_, active = p.Get("u2")
	assert.False(t, active)
}
