package recommend

import (
	"sync"
	"time"

	"marketplace/domain"
)

// BehaviorLog is the append-only record of shopper actions feeding collaborative
// similarity. Events are never mutated; the only removal is retention trimming,
// which is off unless configured.
type BehaviorLog struct {
	mu     sync.RWMutex
	events []domain.BehaviorEvent

	// product id -> user id -> number of events still held
	users map[string]map[string]int

	maxEvents int
	retention time.Duration
	now       func() time.Time
}

func NewBehaviorLog(cfg RetentionConfig) *BehaviorLog {
	return &BehaviorLog{
		users:     make(map[string]map[string]int),
		maxEvents: cfg.MaxEvents,
		retention: cfg.Retention,
		now:       time.Now,
	}
}

func (l *BehaviorLog) Append(ev domain.BehaviorEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.events = append(l.events, ev)

	byUser, ok := l.users[ev.ProductID]
	if !ok {
		byUser = make(map[string]int)
		l.users[ev.ProductID] = byUser
	}
	byUser[ev.UserID]++

	l.trimLocked()
}

func (l *BehaviorLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}

// Events returns a copy of the held events, oldest first.
func (l *BehaviorLog) Events() []domain.BehaviorEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.BehaviorEvent, len(l.events))
	copy(out, l.events)
	return out
}

// Snapshot freezes the product -> users relation so one request scores
// against a consistent view while other requests keep appending.
func (l *BehaviorLog) Snapshot() UserIndex {
	l.mu.RLock()
	defer l.mu.RUnlock()

	idx := make(UserIndex, len(l.users))
	for productID, byUser := range l.users {
		set := make(map[string]struct{}, len(byUser))
		for userID := range byUser {
			set[userID] = struct{}{}
		}
		idx[productID] = set
	}
	return idx
}

// trimLocked drops the oldest appended events beyond the retention window or
// the event cap. Order is append order, not event timestamp.
func (l *BehaviorLog) trimLocked() {
	drop := 0

	if l.retention > 0 {
		cutoff := l.now().Add(-l.retention)
		for drop < len(l.events) && l.events[drop].Timestamp.Before(cutoff) {
			drop++
		}
	}

	if l.maxEvents > 0 && len(l.events)-drop > l.maxEvents {
		drop = len(l.events) - l.maxEvents
	}

	if drop == 0 {
		return
	}

	for _, ev := range l.events[:drop] {
		byUser := l.users[ev.ProductID]
		byUser[ev.UserID]--
		if byUser[ev.UserID] <= 0 {
			delete(byUser, ev.UserID)
		}
		if len(byUser) == 0 {
			delete(l.users, ev.ProductID)
		}
	}

	remaining := len(l.events) - drop
	// compact so the backing array does not grow forever
	if cap(l.events) > 2*remaining+64 {
		kept := make([]domain.BehaviorEvent, remaining)
		copy(kept, l.events[drop:])
		l.events = kept
		return
	}
	l.events = l.events[drop:]
}

// UserIndex maps a product id to the distinct users that interacted with it.
type UserIndex map[string]map[string]struct{}

func (u UserIndex) UsersOf(productID string) map[string]struct{} {
	return u[productID]
}
