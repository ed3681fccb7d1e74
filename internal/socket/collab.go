package socket

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/anshulagrawal2902/MSS/internal/model"
	"github.com/anshulagrawal2902/MSS/internal/repository"
)

// SavedPublisher receives an audit notification after every
// successful document save.  Implemented by the RabbitMQ publisher;
// nil disables auditing.
type SavedPublisher interface {
	PublishDocumentSaved(ctx context.Context, change model.Change, username string) error
}

// Collab implements the actions layered on an authenticated session:
// chat send/edit/delete, document save, and the permission and
// operation lifecycle notifications fired by the administrative HTTP
// handlers.
//
// Every inbound action follows the same template: verify token,
// resolve user, gate check, silently drop on denial, mutate the
// store, and only then emit.  Nothing is ever broadcast for a write
// that did not commit.
type Collab struct {
	session   *Session
	hub       *Hub
	gate      *Gate
	perms     PermissionSource
	messages  MessageStore
	documents DocumentStore
	publisher SavedPublisher
}

func NewCollab(session *Session, hub *Hub, gate *Gate, perms PermissionSource, messages MessageStore, documents DocumentStore, publisher SavedPublisher) *Collab {
	return &Collab{
		session:   session,
		hub:       hub,
		gate:      gate,
		perms:     perms,
		messages:  messages,
		documents: documents,
		publisher: publisher,
	}
}

// ChatMessage stores a chat message and mirrors it to the room.  A
// reply_id of -1 marks a top-level message; replies go out on their
// own event so clients can thread them.
func (co *Collab) ChatMessage(ctx context.Context, c *Client, p chatPayload) {
	user, ok := co.session.authenticate(ctx, p.Token)
	if !ok {
		return
	}
	if allowed, err := co.gate.CanEmit(ctx, user.ID, p.OpID); err != nil || !allowed {
		co.logGate("chat-message", user.ID, p.OpID, err)
		return
	}

	msg, err := co.messages.Add(ctx, p.OpID, user.ID, p.MessageText, model.MessageText, p.ReplyID)
	if err != nil {
		co.logStore("add message", p.OpID, err)
		return
	}
	event := EvChatMessageClient
	if p.ReplyID != model.NoReply {
		event = EvChatMessageReplyClient
	}
	co.hub.EmitToRoom(Room(p.OpID), event, NewMessagePayload(msg))
}

// EditMessage replaces a message's text and mirrors the edit.
func (co *Collab) EditMessage(ctx context.Context, c *Client, p editPayload) {
	user, ok := co.session.authenticate(ctx, p.Token)
	if !ok {
		return
	}
	if allowed, err := co.gate.CanEmit(ctx, user.ID, p.OpID); err != nil || !allowed {
		co.logGate("edit-message", user.ID, p.OpID, err)
		return
	}
	if err := co.messages.Edit(ctx, p.OpID, p.MessageID, p.NewMessageText); err != nil {
		co.logStore("edit message", p.OpID, err)
		return
	}
	co.hub.EmitToRoom(Room(p.OpID), EvEditMessageClient, EditMessageUpdate{
		MessageID:      p.MessageID,
		NewMessageText: p.NewMessageText,
	})
}

// DeleteMessage removes a message (cascading to its replies for a
// top-level message) and mirrors the delete.
func (co *Collab) DeleteMessage(ctx context.Context, c *Client, p deletePayload) {
	user, ok := co.session.authenticate(ctx, p.Token)
	if !ok {
		return
	}
	if allowed, err := co.gate.CanEmit(ctx, user.ID, p.OpID); err != nil || !allowed {
		co.logGate("delete-message", user.ID, p.OpID, err)
		return
	}
	if err := co.messages.Delete(ctx, p.OpID, p.MessageID); err != nil {
		co.logStore("delete message", p.OpID, err)
		return
	}
	co.hub.EmitToRoom(Room(p.OpID), EvDeleteMessageClient, DeleteMessageUpdate{MessageID: p.MessageID})
}

// FileSave persists a new document version.  On success it emits a
// system chat message summarizing the save, then file-changed so
// other clients refetch.  Both emissions happen strictly after the
// store commit; a failed save emits nothing.
func (co *Collab) FileSave(ctx context.Context, c *Client, p fileSavePayload) {
	user, ok := co.session.authenticate(ctx, p.Token)
	if !ok {
		return
	}
	if allowed, err := co.gate.CanEmit(ctx, user.ID, p.OpID); err != nil || !allowed {
		co.logGate("file-save", user.ID, p.OpID, err)
		return
	}

	change, err := co.documents.SaveDocument(ctx, p.OpID, user.ID, p.Content, p.VersionName, p.Comment)
	if err != nil {
		co.logStore("save document", p.OpID, err)
		return
	}

	text := fmt.Sprintf("[service message] **%s** saved changes. %s", user.Username, p.MessageText)
	if msg, err := co.messages.Add(ctx, p.OpID, user.ID, text, model.MessageSystem, model.NoReply); err != nil {
		co.logStore("add service message", p.OpID, err)
	} else {
		co.hub.EmitToRoom(Room(p.OpID), EvChatMessageClient, NewMessagePayload(msg))
	}
	co.hub.EmitToRoom(Room(p.OpID), EvFileChanged, FileChanged{OpID: p.OpID, UserID: user.ID})

	if co.publisher != nil {
		if err := co.publisher.PublishDocumentSaved(ctx, change, user.Username); err != nil {
			log.Printf("socket: publish document-saved audit: %v", err)
		}
	}
}

// EmitFileChange tells an operation's room the document changed
// outside the socket protocol (e.g. an HTTP upload).
func (co *Collab) EmitFileChange(opID uint64) {
	co.hub.EmitToRoom(Room(opID), EvFileChanged, FileChanged{OpID: opID})
}

// EmitNewPermission tells the affected user it gained access to an
// operation, so it refetches its operation list.
func (co *Collab) EmitNewPermission(userID, opID uint64) {
	co.emitToUser(userID, EvNewPermission, PermissionUpdate{OpID: opID, UserID: userID})
}

// EmitUpdatePermission tells the affected user its access level
// changed.  When the level is unknown to the caller it is re-read
// from the permission store.
func (co *Collab) EmitUpdatePermission(ctx context.Context, userID, opID uint64, level model.AccessLevel) {
	if level == "" {
		perm, err := co.perms.Get(ctx, userID, opID)
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				co.logStore("resolve access level", opID, err)
			}
			return
		}
		level = perm.AccessLevel
	}
	co.emitToUser(userID, EvUpdatePermission, PermissionUpdate{OpID: opID, UserID: userID, AccessLevel: string(level)})
}

// EmitRevokePermission tells the affected user, on its own
// connection only, that its access was revoked.
func (co *Collab) EmitRevokePermission(userID, opID uint64) {
	co.emitToUser(userID, EvRevokePermission, PermissionUpdate{OpID: opID, UserID: userID})
}

// EmitOperationPermissionsUpdated refreshes collaborator lists of
// everyone viewing the operation.
func (co *Collab) EmitOperationPermissionsUpdated(userID, opID uint64) {
	co.hub.EmitToRoom(Room(opID), EvOpPermissionsUpdated, PermissionUpdate{OpID: opID, UserID: userID})
}

// EmitOperationDelete announces the removal of an operation to its
// room.
func (co *Collab) EmitOperationDelete(opID uint64) {
	co.hub.EmitToRoom(Room(opID), EvOperationDeleted, OperationDeleted{OpID: opID})
}

// EmitOperationListUpdate tells every connected client the operation
// list changed (created, renamed, archived).
func (co *Collab) EmitOperationListUpdate() {
	co.hub.EmitGlobal(EvOperationListUpdate, nil)
}

func (co *Collab) emitToUser(userID uint64, event string, payload any) {
	connID, ok := co.session.registry.LookupConn(userID)
	if !ok {
		// Not connected; the user resynchronizes on next connect.
		return
	}
	co.hub.EmitToConn(connID, event, payload)
}

func (co *Collab) logGate(action string, userID, opID uint64, err error) {
	if err != nil {
		log.Printf("socket: %s gate check user=%d op=%d: %v", action, userID, opID, err)
	}
}

func (co *Collab) logStore(what string, opID uint64, err error) {
	if !errors.Is(err, repository.ErrNotFound) {
		log.Printf("socket: %s op=%d: %v", what, opID, err)
	}
}
