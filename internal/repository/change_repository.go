package repository

import (
	"context"
	"crypto/sha1"
	"database/sql"
	"encoding/hex"
	"errors"
	"time"

	"github.com/anshulagrawal2902/MSS/internal/model"
)

// ChangeRepo persists document content together with its append-only
// version log.  A save writes one changes row and the new document
// blob in a single transaction, so a version record never exists
// without its content having been stored and vice versa.
type ChangeRepo struct{ DB *sql.DB }

func NewChangeRepo(db *sql.DB) *ChangeRepo { return &ChangeRepo{DB: db} }

// SaveDocument stores content as the operation's current document,
// appends a Change record and bumps the operation's last_used.
// The commit hash is the SHA-1 of the content.
func (r *ChangeRepo) SaveDocument(ctx context.Context, opID, userID uint64, content, versionName, comment string) (model.Change, error) {
	sum := sha1.Sum([]byte(content))
	change := model.Change{
		OpID:       opID,
		UserID:     userID,
		CommitHash: hex.EncodeToString(sum[:]),
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Change{}, err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO documents (op_id, content, updated_at) VALUES (?,?,?)
		 ON DUPLICATE KEY UPDATE content=VALUES(content), updated_at=VALUES(updated_at)`,
		opID, content, now); err != nil {
		return model.Change{}, err
	}
	res, err := tx.ExecContext(ctx,
		"INSERT INTO changes (op_id, u_id, commit_hash, version_name, comment) VALUES (?,?,?,?,?)",
		opID, userID, change.CommitHash, versionName, comment)
	if err != nil {
		return model.Change{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Change{}, err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE operations SET last_used=? WHERE id=?", now, opID); err != nil {
		return model.Change{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Change{}, err
	}

	change.ID = uint64(id)
	change.VersionName = versionName
	change.Comment = comment
	change.CreatedAt = now
	return change, nil
}

// GetDocument returns the current content blob of an operation.
func (r *ChangeRepo) GetDocument(ctx context.Context, opID uint64) (model.Document, error) {
	var d model.Document
	err := r.DB.QueryRowContext(ctx,
		"SELECT op_id, content, updated_at FROM documents WHERE op_id=? LIMIT 1",
		opID).Scan(&d.OpID, &d.Content, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return d, ErrNotFound
	}
	return d, err
}

// ListByOperation returns the version history of an operation,
// newest first.
func (r *ChangeRepo) ListByOperation(ctx context.Context, opID uint64) ([]model.Change, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, op_id, u_id, commit_hash, version_name, comment, created_at
		 FROM changes WHERE op_id=? ORDER BY created_at DESC, id DESC`, opID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var changes []model.Change
	for rows.Next() {
		var c model.Change
		if err := rows.Scan(&c.ID, &c.OpID, &c.UserID, &c.CommitHash, &c.VersionName, &c.Comment, &c.CreatedAt); err != nil {
			return nil, err
		}
		changes = append(changes, c)
	}
	return changes, rows.Err()
}
