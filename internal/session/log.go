// Package session holds the observability log of a pipeline run and persists
// the latest snapshot per session.
package session

import (
	"sync"
	"time"

	"github.com/kiranshivaraju/insightreporter/pkg/models"
)

// Log is an append-only sequence of entries owned by one session. It is safe
// for concurrent use; entries are never modified after Append.
type Log struct {
	mu      sync.Mutex
	entries []models.LogEntry
	now     func() time.Time
}

// NewLog returns an empty Log.
func NewLog() *Log {
	return &Log{now: func() time.Time { return time.Now().UTC() }}
}

// Append records an entry and returns it.
func (l *Log) Append(agent models.Agent, action models.Action, details string) models.LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := models.LogEntry{Agent: agent, Action: action, Details: details, At: l.clock()}
	l.entries = append(l.entries, entry)
	return entry
}

// Entries returns a snapshot of the log in append order.
func (l *Log) Entries() []models.LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]models.LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *Log) clock() time.Time {
	if l.now == nil {
		return time.Now().UTC()
	}
	return l.now()
}
