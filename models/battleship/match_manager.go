package battleship

import (
	"sync"
	"time"

	cerr "github.com/saeidalz13/battleship-solo/internal/error"
)

const DefaultMatchTTL = time.Minute * 30

type MatchManager interface {
	CreateMatch(optFuncs ...MatchOption) *Match
	WithMatch(matchUuid string, fn func(*Match) error) error
	TerminateMatch(matchUuid string)
	RemoveStale(now time.Time) []string
	Count() int
}

// A match is only ever touched under its own entry lock, so a
// websocket loop and a snapshot request never race on it.
type matchEntry struct {
	mu           sync.Mutex
	match        *Match
	lastActivity time.Time
}

type BattleshipMatchManager struct {
	matches map[string]*matchEntry
	ttl     time.Duration
	mu      sync.RWMutex
}

var _ MatchManager = (*BattleshipMatchManager)(nil)

func NewBattleshipMatchManager() *BattleshipMatchManager {
	return &BattleshipMatchManager{
		matches: make(map[string]*matchEntry, 10),
		ttl:     DefaultMatchTTL,
	}
}

// CreateMatch registers a new match under an unused uuid and begins it.
func (bmm *BattleshipMatchManager) CreateMatch(optFuncs ...MatchOption) *Match {
	match := NewMatch(optFuncs...)
	match.Begin()

	bmm.mu.Lock()
	for {
		if _, prs := bmm.matches[match.uuid]; !prs {
			break
		}
		match.uuid = newMatchUuid()
	}
	bmm.matches[match.uuid] = &matchEntry{match: match, lastActivity: time.Now()}
	bmm.mu.Unlock()

	return match
}

func (bmm *BattleshipMatchManager) getEntry(matchUuid string) (*matchEntry, error) {
	bmm.mu.RLock()
	entry, prs := bmm.matches[matchUuid]
	bmm.mu.RUnlock()
	if !prs {
		return nil, cerr.ErrMatchNotExists(matchUuid)
	}
	return entry, nil
}

// WithMatch runs fn with exclusive access to the match.
func (bmm *BattleshipMatchManager) WithMatch(matchUuid string, fn func(*Match) error) error {
	entry, err := bmm.getEntry(matchUuid)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.lastActivity = time.Now()

	return fn(entry.match)
}

func (bmm *BattleshipMatchManager) TerminateMatch(matchUuid string) {
	bmm.mu.Lock()
	delete(bmm.matches, matchUuid)
	bmm.mu.Unlock()
}

// RemoveStale drops matches idle for longer than the ttl and returns
// their uuids.
func (bmm *BattleshipMatchManager) RemoveStale(now time.Time) []string {
	bmm.mu.Lock()
	defer bmm.mu.Unlock()

	removed := make([]string, 0, 5)
	for matchUuid, entry := range bmm.matches {
		entry.mu.Lock()
		idle := now.Sub(entry.lastActivity)
		entry.mu.Unlock()

		if idle > bmm.ttl {
			delete(bmm.matches, matchUuid)
			removed = append(removed, matchUuid)
		}
	}
	return removed
}

func (bmm *BattleshipMatchManager) Count() int {
	bmm.mu.RLock()
	defer bmm.mu.RUnlock()
	return len(bmm.matches)
}
