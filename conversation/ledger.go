// Package conversation tracks per (user, persona) turn counters and
// message history for the lifetime of the process.
package conversation

import (
	"sync"
	"time"
)

// Message is one inbound user message with its arrival time.
type Message struct {
	Text      string
	Timestamp time.Time
}

// Entry holds the mutable state of one (user, persona) conversation.
type Entry struct {
	mu           sync.Mutex
	turns        int
	history      []Message
	lastActivity time.Time
}

// Ledger owns all conversation entries. Entries are created lazily on
// first use and never removed by the engine itself.
type Ledger struct {
	mu      sync.Mutex
	entries map[string]*Entry
}

func NewLedger() *Ledger {
	return &Ledger{entries: make(map[string]*Entry)}
}

func ledgerKey(userID, personaID string) string {
	return userID + "\x00" + personaID
}

// entry returns the entry for the composite key, creating it at most
// once even under concurrent first access.
func (l *Ledger) entry(userID, personaID string) *Entry {
	key := ledgerKey(userID, personaID)
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[key]
	if !ok {
		e = &Entry{}
		l.entries[key] = e
	}
	return e
}

// RecordTurn appends the message to the conversation history,
// increments the turn counter and stamps last activity, atomically for
// this key. It returns the 1-based turn number of the message.
// Different keys never contend.
func (l *Ledger) RecordTurn(userID, personaID, text string) int {
	e := l.entry(userID, personaID)
	now := time.Now().UTC()

	e.mu.Lock()
	defer e.mu.Unlock()
	e.turns++
	e.history = append(e.history, Message{Text: text, Timestamp: now})
	e.lastActivity = now
	return e.turns
}

// Turns returns the current turn counter for a key without mutating it.
// A key with no entry yet reports zero.
func (l *Ledger) Turns(userID, personaID string) int {
	key := ledgerKey(userID, personaID)
	l.mu.Lock()
	e, ok := l.entries[key]
	l.mu.Unlock()
	if !ok {
		return 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.turns
}

// History returns a copy of the message history for a key.
func (l *Ledger) History(userID, personaID string) []Message {
	key := ledgerKey(userID, personaID)
	l.mu.Lock()
	e, ok := l.entries[key]
	l.mu.Unlock()
	if !ok {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Message, len(e.history))
	copy(out, e.history)
	return out
}

// Active reports the number of conversations the ledger is tracking.
func (l *Ledger) Active() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
