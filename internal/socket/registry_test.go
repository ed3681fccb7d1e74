package socket

import "testing"

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()

	if displaced := r.Register("conn-a", 1); displaced != "" {
		t.Fatalf("first register displaced %q, want none", displaced)
	}
	if uid, ok := r.LookupUser("conn-a"); !ok || uid != 1 {
		t.Fatalf("LookupUser=%d,%v, want 1,true", uid, ok)
	}
	if conn, ok := r.LookupConn(1); !ok || conn != "conn-a" {
		t.Fatalf("LookupConn=%q,%v, want conn-a,true", conn, ok)
	}
}

func TestRegistrySecondConnectionDisplaces(t *testing.T) {
	r := NewRegistry()
	r.Register("conn-a", 1)

	displaced := r.Register("conn-b", 1)
	if displaced != "conn-a" {
		t.Fatalf("displaced=%q, want conn-a", displaced)
	}
	// The old connection no longer resolves after displacement.
	if _, ok := r.LookupUser("conn-a"); ok {
		t.Fatal("displaced connection still resolves to a user")
	}
	if conn, _ := r.LookupConn(1); conn != "conn-b" {
		t.Fatalf("LookupConn=%q, want conn-b", conn)
	}

	// Re-registering the same binding displaces nothing.
	if displaced := r.Register("conn-b", 1); displaced != "" {
		t.Fatalf("re-register displaced %q, want none", displaced)
	}
}

func TestRegistryRemove(t *testing.T) {
	r := NewRegistry()
	r.Register("conn-a", 1)

	r.Remove("conn-a")
	if _, ok := r.LookupUser("conn-a"); ok {
		t.Fatal("removed connection still resolves")
	}
	if _, ok := r.LookupConn(1); ok {
		t.Fatal("removed user still resolves")
	}

	// Removing again, or removing an unknown connection, is a no-op.
	r.Remove("conn-a")
	r.Remove("never-registered")
}

func TestRegistryRemoveStaleBinding(t *testing.T) {
	// Removing the displaced connection must not drop the new one.
	r := NewRegistry()
	r.Register("conn-a", 1)
	r.Register("conn-b", 1)

	r.Remove("conn-a")
	if conn, ok := r.LookupConn(1); !ok || conn != "conn-b" {
		t.Fatalf("LookupConn=%q,%v, want conn-b,true", conn, ok)
	}
}
