package socket

import (
	"context"

	"github.com/anshulagrawal2902/MSS/internal/model"
)

// The socket layer depends on the persistence layer through these
// interfaces, satisfied by the repository types.  Tests substitute
// in-memory fakes.

// UserStore resolves authenticated user ids to full user records.
type UserStore interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// PermissionSource is the read side of the permission store.  It is
// queried on every action; results are never cached here because
// access levels change between actions.
type PermissionSource interface {
	Get(ctx context.Context, userID, opID uint64) (model.Permission, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.Permission, error)
}

// MessageStore persists chat messages.
type MessageStore interface {
	Add(ctx context.Context, opID, userID uint64, text string, msgType model.MessageType, replyID int64) (model.Message, error)
	Edit(ctx context.Context, opID, id uint64, newText string) error
	Delete(ctx context.Context, opID, id uint64) error
}

// DocumentStore persists document saves as content plus an
// append-only change record.
type DocumentStore interface {
	SaveDocument(ctx context.Context, opID, userID uint64, content, versionName, comment string) (model.Change, error)
}
