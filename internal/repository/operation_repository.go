package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/anshulagrawal2902/MSS/internal/model"
)

// OperationRepo provides persistence for operations and their
// creator permission.  An operation is always created together with
// exactly one creator permission, in one transaction.
type OperationRepo struct{ DB *sql.DB }

func NewOperationRepo(db *sql.DB) *OperationRepo { return &OperationRepo{DB: db} }

const operationCols = "id,path,category,description,active,last_used"

func scanOperation(sc interface{ Scan(...any) error }) (model.Operation, error) {
	var op model.Operation
	err := sc.Scan(&op.ID, &op.Path, &op.Category, &op.Description, &op.Active, &op.LastUsed)
	return op, err
}

// Create inserts an operation with an empty document and grants the
// creator permission to userID.  Returns ErrConflict when the path is
// already taken.
func (r *OperationRepo) Create(ctx context.Context, path, description, category string, userID uint64) (uint64, error) {
	if category == "" {
		category = "default"
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx,
		"INSERT INTO operations (path, category, description, last_used) VALUES (?,?,?,?)",
		path, category, description, now)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrConflict
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	opID := uint64(id)
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO permissions (u_id, op_id, access_level) VALUES (?,?,?)",
		userID, opID, model.AccessCreator); err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO documents (op_id, content, updated_at) VALUES (?,?,?)",
		opID, "", now); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return opID, nil
}

// GetByID fetches one operation.
func (r *OperationRepo) GetByID(ctx context.Context, id uint64) (model.Operation, error) {
	op, err := scanOperation(r.DB.QueryRowContext(ctx,
		"SELECT "+operationCols+" FROM operations WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return op, ErrNotFound
	}
	return op, err
}

// GetByPath fetches one operation by its unique path.
func (r *OperationRepo) GetByPath(ctx context.Context, path string) (model.Operation, error) {
	op, err := scanOperation(r.DB.QueryRowContext(ctx,
		"SELECT "+operationCols+" FROM operations WHERE path=? LIMIT 1", path))
	if errors.Is(err, sql.ErrNoRows) {
		return op, ErrNotFound
	}
	return op, err
}

// ListForUser returns the operations a user holds any permission on,
// most recently used first.  When activeOnly is set, archived
// operations are filtered out.
func (r *OperationRepo) ListForUser(ctx context.Context, userID uint64, activeOnly bool) ([]model.Operation, error) {
	q := `SELECT o.id,o.path,o.category,o.description,o.active,o.last_used
		FROM operations o JOIN permissions p ON p.op_id = o.id
		WHERE p.u_id=?`
	if activeOnly {
		q += " AND o.active=1"
	}
	q += " ORDER BY o.last_used DESC"
	rows, err := r.DB.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ops []model.Operation
	for rows.Next() {
		op, err := scanOperation(rows)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, rows.Err()
}

// Update changes path, category or description.  Empty fields are
// left untouched.
func (r *OperationRepo) Update(ctx context.Context, id uint64, path, category, description string) error {
	sets := make([]string, 0, 3)
	args := make([]any, 0, 4)
	if path != "" {
		sets = append(sets, "path=?")
		args = append(args, path)
	}
	if category != "" {
		sets = append(sets, "category=?")
		args = append(args, category)
	}
	if description != "" {
		sets = append(sets, "description=?")
		args = append(args, description)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	res, err := r.DB.ExecContext(ctx,
		"UPDATE operations SET "+strings.Join(sets, ", ")+" WHERE id=?", args...)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrConflict
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// SetActive archives (false) or reactivates (true) an operation.
func (r *OperationRepo) SetActive(ctx context.Context, id uint64, active bool) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE operations SET active=? WHERE id=?", active, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// TouchLastUsed bumps the last_used timestamp.
func (r *OperationRepo) TouchLastUsed(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE operations SET last_used=UTC_TIMESTAMP() WHERE id=?", id)
	return err
}

// Delete removes an operation.  Permissions, messages, changes and
// the document cascade in the database.
func (r *OperationRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM operations WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
