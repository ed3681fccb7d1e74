// Package socket implements the collaborative session layer: the
// persistent-connection hub, room broadcasting, presence tracking
// and the token-gated protocol handlers for chat and document saves.
package socket

import "github.com/anshulagrawal2902/MSS/internal/model"

// Inbound event names.  These are the events clients emit; every
// payload carries the auth token because tokens expire independently
// of connection lifetime and are re-verified on each action.
const (
	EvStart               = "start"
	EvOperationSelected   = "operation-selected"
	EvAddUserToOperation  = "add-user-to-operation"
	EvChatMessage         = "chat-message"
	EvEditMessage         = "edit-message"
	EvDeleteMessage       = "delete-message"
	EvFileSave            = "file-save"
	EvUpdateOperationList = "update-operation-list"
)

// Outbound event names.
const (
	EvActiveUserUpdate       = "active-user-update"
	EvChatMessageClient      = "chat-message-client"
	EvChatMessageReplyClient = "chat-message-reply-client"
	EvEditMessageClient      = "edit-message-client"
	EvDeleteMessageClient    = "delete-message-client"
	EvFileChanged            = "file-changed"
	EvNewPermission          = "new-permission"
	EvUpdatePermission       = "update-permission"
	EvRevokePermission       = "revoke-permission"
	EvOpPermissionsUpdated   = "operation-permissions-updated"
	EvOperationDeleted       = "operation-deleted"
	EvOperationListUpdate    = "operation-list-update"
)

// Envelope is the wire frame for both directions: an event name and
// a flat payload record.
type Envelope struct {
	Event   string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}

// startPayload authenticates a fresh connection.
type startPayload struct {
	Token string `json:"token"`
}

// opPayload covers operation-selected and add-user-to-operation.
type opPayload struct {
	Token string `json:"token"`
	OpID  uint64 `json:"op_id"`
}

type chatPayload struct {
	Token       string `json:"token"`
	OpID        uint64 `json:"op_id"`
	MessageText string `json:"message_text"`
	ReplyID     int64  `json:"reply_id"`
}

type editPayload struct {
	Token          string `json:"token"`
	OpID           uint64 `json:"op_id"`
	MessageID      uint64 `json:"message_id"`
	NewMessageText string `json:"new_message_text"`
}

type deletePayload struct {
	Token     string `json:"token"`
	OpID      uint64 `json:"op_id"`
	MessageID uint64 `json:"message_id"`
}

type fileSavePayload struct {
	Token       string `json:"token"`
	OpID        uint64 `json:"op_id"`
	Content     string `json:"content"`
	Comment     string `json:"comment"`
	VersionName string `json:"version_name"`
	MessageText string `json:"messageText"`
}

// ActiveUserUpdate announces a changed presence count for one
// operation to its room.
type ActiveUserUpdate struct {
	OpID  uint64 `json:"op_id"`
	Count int    `json:"count"`
}

// MessagePayload is the serialized chat message sent on
// chat-message-client and chat-message-reply-client.  Replies is
// always empty on the wire; clients attach replies to their parent
// on receipt.
type MessagePayload struct {
	ID       uint64 `json:"id"`
	UserID   uint64 `json:"u_id"`
	Username string `json:"username"`
	Text     string `json:"text"`
	Type     string `json:"message_type"`
	ReplyID  int64  `json:"reply_id"`
	Replies  []any  `json:"replies"`
	Time     string `json:"time"`
}

// NewMessagePayload converts a stored message into its wire form.
func NewMessagePayload(m model.Message) MessagePayload {
	return MessagePayload{
		ID:       m.ID,
		UserID:   m.UserID,
		Username: m.Username,
		Text:     m.Text,
		Type:     string(m.Type),
		ReplyID:  m.WireReplyID(),
		Replies:  []any{},
		Time:     m.CreatedAt.UTC().Format("2006-01-02T15:04:05.000000-07:00"),
	}
}

// EditMessageUpdate mirrors an edit back to the room.
type EditMessageUpdate struct {
	MessageID      uint64 `json:"message_id"`
	NewMessageText string `json:"new_message_text"`
}

// DeleteMessageUpdate mirrors a delete back to the room.
type DeleteMessageUpdate struct {
	MessageID uint64 `json:"message_id"`
}

// FileChanged tells room members to refetch the document.
type FileChanged struct {
	OpID   uint64 `json:"op_id"`
	UserID uint64 `json:"u_id,omitempty"`
}

// PermissionUpdate covers new-permission, update-permission,
// revoke-permission and operation-permissions-updated.
type PermissionUpdate struct {
	OpID        uint64 `json:"op_id"`
	UserID      uint64 `json:"u_id"`
	AccessLevel string `json:"access_level,omitempty"`
}

// OperationDeleted announces removal of an operation to its room.
type OperationDeleted struct {
	OpID uint64 `json:"op_id"`
}
