package socket

import "testing"

func TestPresenceMarkActive(t *testing.T) {
	p := NewPresence()

	count, _, _, moved := p.MarkActive(1, 10)
	if count != 1 || moved {
		t.Fatalf("first select: count=%d moved=%v, want 1 false", count, moved)
	}

	// Re-selecting the same operation does not grow the set.
	count, _, _, moved = p.MarkActive(1, 10)
	if count != 1 || moved {
		t.Fatalf("reselect: count=%d moved=%v, want 1 false", count, moved)
	}

	count, _, _, _ = p.MarkActive(2, 10)
	if count != 2 {
		t.Fatalf("second user: count=%d, want 2", count)
	}
}

func TestPresenceSingleMembership(t *testing.T) {
	p := NewPresence()
	p.MarkActive(1, 10)
	p.MarkActive(2, 10)

	// User 1 switches operations; it must leave 10 as it enters 20.
	count, prevOp, prevCount, moved := p.MarkActive(1, 20)
	if !moved {
		t.Fatal("switch: expected moved=true")
	}
	if prevOp != 10 || prevCount != 1 {
		t.Fatalf("switch: prevOp=%d prevCount=%d, want 10 1", prevOp, prevCount)
	}
	if count != 1 {
		t.Fatalf("switch: count=%d, want 1", count)
	}
	if got := p.Count(10); got != 1 {
		t.Fatalf("count(10)=%d, want 1", got)
	}
	if got := p.Count(20); got != 1 {
		t.Fatalf("count(20)=%d, want 1", got)
	}
}

func TestPresenceMarkInactive(t *testing.T) {
	p := NewPresence()

	if _, _, removed := p.MarkInactive(1); removed {
		t.Fatal("inactive user should not be removed")
	}

	p.MarkActive(1, 10)
	p.MarkActive(2, 10)

	opID, count, removed := p.MarkInactive(1)
	if !removed || opID != 10 || count != 1 {
		t.Fatalf("got op=%d count=%d removed=%v, want 10 1 true", opID, count, removed)
	}

	// Second call for the same user is a no-op.
	if _, _, removed := p.MarkInactive(1); removed {
		t.Fatal("double inactive should be a no-op")
	}

	// Last member out leaves no trace.
	if _, count, _ := p.MarkInactive(2); count != 0 {
		t.Fatalf("last leave: count=%d, want 0", count)
	}
	if got := p.Count(10); got != 0 {
		t.Fatalf("count after all left=%d, want 0", got)
	}
}

func TestPresenceMarkInactiveIn(t *testing.T) {
	p := NewPresence()
	p.MarkActive(1, 10)

	if _, removed := p.MarkInactiveIn(1, 20); removed {
		t.Fatal("leaving an operation the user is not in should be a no-op")
	}
	count, removed := p.MarkInactiveIn(1, 10)
	if !removed || count != 0 {
		t.Fatalf("got count=%d removed=%v, want 0 true", count, removed)
	}
}

func TestPresenceCountSequence(t *testing.T) {
	// Two users select, one disconnects, counts go 1, 2, 1.
	p := NewPresence()

	if count, _, _, _ := p.MarkActive(1, 10); count != 1 {
		t.Fatalf("after first select: count=%d, want 1", count)
	}
	if count, _, _, _ := p.MarkActive(2, 10); count != 2 {
		t.Fatalf("after second select: count=%d, want 2", count)
	}
	if _, count, _ := p.MarkInactive(1); count != 1 {
		t.Fatalf("after disconnect: count=%d, want 1", count)
	}
}
