package model

import "testing"

func TestValidAccessLevel(t *testing.T) {
	for _, level := range []string{"viewer", "collaborator", "admin", "creator"} {
		if !ValidAccessLevel(level) {
			t.Errorf("ValidAccessLevel(%q)=false, want true", level)
		}
	}
	for _, bad := range []string{"", "owner", "Admin", "CREATOR", "administrator"} {
		if ValidAccessLevel(bad) {
			t.Errorf("ValidAccessLevel(%q)=true, want false", bad)
		}
	}
}

func TestWireReplyID(t *testing.T) {
	top := Message{}
	if got := top.WireReplyID(); got != NoReply {
		t.Fatalf("top-level WireReplyID=%d, want %d", got, NoReply)
	}

	parent := uint64(7)
	reply := Message{ReplyID: &parent}
	if got := reply.WireReplyID(); got != 7 {
		t.Fatalf("reply WireReplyID=%d, want 7", got)
	}
}
