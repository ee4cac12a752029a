package jwt

import (
	"sync"
	"time"
)

const ledgerSweepInterval = time.Minute

// Ledger remembers consumed token ids until the tokens expire, which makes a session
// token usable for exactly one websocket connection.
type Ledger struct {
	mu   sync.Mutex
	used map[string]time.Time

	stop chan struct{}
	once sync.Once
}

// NewLedger creates an empty ledger and starts its sweep goroutine.
func NewLedger() *Ledger {
	l := &Ledger{
		used: make(map[string]time.Time),
		stop: make(chan struct{}),
	}

	go l.sweepLoop()

	return l
}

// Consume marks the token id as used. It returns false if the id was already consumed.
func (l *Ledger) Consume(tokenID string, expiresAt time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, seen := l.used[tokenID]; seen {
		return false
	}

	l.used[tokenID] = expiresAt
	return true
}

// Stop terminates the sweep goroutine.
func (l *Ledger) Stop() {
	l.once.Do(func() { close(l.stop) })
}

func (l *Ledger) sweepLoop() {
	ticker := time.NewTicker(ledgerSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case now := <-ticker.C:
			l.sweep(now)
		}
	}
}

// sweep drops ids of tokens that have expired; those would fail ParseToken anyway.
func (l *Ledger) sweep(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for id, expiry := range l.used {
		if now.After(expiry) {
			delete(l.used, id)
			removed++
		}
	}
	return removed
}
