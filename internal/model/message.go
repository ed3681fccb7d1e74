package model

import "time"

// MessageType distinguishes ordinary chat text from server-generated
// and attachment messages.
type MessageType string

const (
	MessageText     MessageType = "text"
	MessageSystem   MessageType = "system"
	MessageImage    MessageType = "image"
	MessageDocument MessageType = "document"
)

// NoReply is the wire sentinel a client sends as reply_id for a
// top-level message.  It is stored as NULL in the database.
const NoReply int64 = -1

// Message is one chat message in an operation's room, stored in the
// `messages` table.  ReplyID forms a two-level reply tree: a message
// may reply to a top-level message, and deleting a top-level message
// cascades to its replies.
//
// Fields:
//  ID        – primary key identifier.
//  OpID      – operation the message belongs to.
//  UserID    – author of the message.
//  Username  – author display name, resolved via join (not a column).
//  Text      – message body.
//  Type      – text/system/image/document.
//  ReplyID   – parent message id, nil for top-level messages.
//  CreatedAt – timestamp of creation.
type Message struct {
	ID        uint64      // messages.id
	OpID      uint64      // messages.op_id
	UserID    uint64      // messages.u_id
	Username  string      // joined from users.username
	Text      string      // messages.text
	Type      MessageType // messages.message_type
	ReplyID   *uint64     // messages.reply_id (nullable)
	CreatedAt time.Time   // messages.created_at
}

// WireReplyID returns the reply id in wire form: the parent id, or
// NoReply for a top-level message.
func (m *Message) WireReplyID() int64 {
	if m.ReplyID == nil {
		return NoReply
	}
	return int64(*m.ReplyID)
}
