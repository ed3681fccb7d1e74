package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/anshulagrawal2902/MSS/internal/model"
)

// MessageRepo provides persistence for chat messages.  The reply
// tree is two levels deep by convention; the delete cascade is
// performed explicitly here rather than relying on the foreign key.
type MessageRepo struct{ DB *sql.DB }

func NewMessageRepo(db *sql.DB) *MessageRepo { return &MessageRepo{DB: db} }

const messageCols = `m.id, m.op_id, m.u_id, u.username, m.text, m.message_type, m.reply_id, m.created_at`

func scanMessage(sc interface{ Scan(...any) error }) (model.Message, error) {
	var m model.Message
	var replyID sql.NullInt64
	err := sc.Scan(&m.ID, &m.OpID, &m.UserID, &m.Username, &m.Text, &m.Type, &replyID, &m.CreatedAt)
	if replyID.Valid {
		id := uint64(replyID.Int64)
		m.ReplyID = &id
	}
	return m, err
}

// Add inserts a message and returns it with the author username and
// creation time resolved.  replyID follows the wire convention:
// model.NoReply means top-level.
func (r *MessageRepo) Add(ctx context.Context, opID, userID uint64, text string, msgType model.MessageType, replyID int64) (model.Message, error) {
	var parent any
	if replyID != model.NoReply {
		// A reply must point at an existing top-level message in the
		// same operation; anything else is dropped as NotFound.
		var parentReply sql.NullInt64
		var parentOp uint64
		err := r.DB.QueryRowContext(ctx,
			"SELECT op_id, reply_id FROM messages WHERE id=? LIMIT 1",
			replyID).Scan(&parentOp, &parentReply)
		if errors.Is(err, sql.ErrNoRows) {
			return model.Message{}, ErrNotFound
		}
		if err != nil {
			return model.Message{}, err
		}
		if parentOp != opID || parentReply.Valid {
			return model.Message{}, ErrConflict
		}
		parent = replyID
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO messages (op_id, u_id, text, message_type, reply_id) VALUES (?,?,?,?,?)",
		opID, userID, text, msgType, parent)
	if err != nil {
		return model.Message{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Message{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches one message with its author username.
func (r *MessageRepo) GetByID(ctx context.Context, id uint64) (model.Message, error) {
	m, err := scanMessage(r.DB.QueryRowContext(ctx,
		"SELECT "+messageCols+" FROM messages m JOIN users u ON u.id = m.u_id WHERE m.id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return m, ErrNotFound
	}
	return m, err
}

// ListByOperation returns all messages of an operation in creation
// order.
func (r *MessageRepo) ListByOperation(ctx context.Context, opID uint64) ([]model.Message, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+messageCols+" FROM messages m JOIN users u ON u.id = m.u_id WHERE m.op_id=? ORDER BY m.created_at, m.id", opID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []model.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// Edit replaces the text of a message.  The operation id scopes the
// update; a message living in another operation is NotFound here.
func (r *MessageRepo) Edit(ctx context.Context, opID, id uint64, newText string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE messages SET text=? WHERE id=? AND op_id=?", newText, id, opID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var one int
		err := r.DB.QueryRowContext(ctx,
			"SELECT 1 FROM messages WHERE id=? AND op_id=? LIMIT 1", id, opID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Delete removes a message of an operation.  Deleting a top-level
// message removes its direct replies first; deleting a reply removes
// only itself.  The cascade is explicit and bounded by the two-level
// convention.
func (r *MessageRepo) Delete(ctx context.Context, opID, id uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM messages WHERE reply_id=? AND op_id=?", id, opID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM messages WHERE id=? AND op_id=?", id, opID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}
