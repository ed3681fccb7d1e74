package socket

import "sync"

// Presence tracks which users are actively viewing which operation.
// A user appears in at most one operation's set at any time:
// selecting a new operation removes the user from the previous one
// first.  Counts are always derived from set size, never cached.
//
// The maps are owned state behind a mutex; nothing outside this type
// touches them.
type Presence struct {
	mu     sync.Mutex
	byOp   map[uint64]map[uint64]struct{}
	byUser map[uint64]uint64
}

func NewPresence() *Presence {
	return &Presence{
		byOp:   make(map[uint64]map[uint64]struct{}),
		byUser: make(map[uint64]uint64),
	}
}

// MarkActive records the user as active on opID, removing it from
// its previous operation if it had a different one.  It returns the
// new count for opID and, when the user moved between operations,
// the previous operation and its updated count.
func (p *Presence) MarkActive(userID, opID uint64) (count int, prevOp uint64, prevCount int, moved bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if prev, ok := p.byUser[userID]; ok && prev != opID {
		prevOp = prev
		prevCount = p.removeLocked(userID, prev)
		moved = true
	}
	set, ok := p.byOp[opID]
	if !ok {
		set = make(map[uint64]struct{})
		p.byOp[opID] = set
	}
	set[userID] = struct{}{}
	p.byUser[userID] = opID
	return len(set), prevOp, prevCount, moved
}

// MarkInactive removes the user from whatever operation it was
// active on.  It returns that operation and its updated count;
// removed is false when the user was not active anywhere.
func (p *Presence) MarkInactive(userID uint64) (opID uint64, count int, removed bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	opID, ok := p.byUser[userID]
	if !ok {
		return 0, 0, false
	}
	return opID, p.removeLocked(userID, opID), true
}

// MarkInactiveIn removes the user from one specific operation only,
// used when leaving an operation without disconnecting.
func (p *Presence) MarkInactiveIn(userID, opID uint64) (count int, removed bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	set, ok := p.byOp[opID]
	if !ok {
		return 0, false
	}
	if _, ok := set[userID]; !ok {
		return len(set), false
	}
	return p.removeLocked(userID, opID), true
}

// Count returns the number of active users on an operation.
func (p *Presence) Count(opID uint64) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.byOp[opID])
}

// removeLocked deletes the membership and drops empty sets so a
// never-tracked operation and one everybody left look the same.
// Callers hold p.mu.
func (p *Presence) removeLocked(userID, opID uint64) int {
	set := p.byOp[opID]
	delete(set, userID)
	if p.byUser[userID] == opID {
		delete(p.byUser, userID)
	}
	n := len(set)
	if n == 0 {
		delete(p.byOp, opID)
	}
	return n
}
