package socket

import (
	"context"
	"errors"

	"github.com/anshulagrawal2902/MSS/internal/model"
	"github.com/anshulagrawal2902/MSS/internal/repository"
)

// Gate answers authorization questions for one user on one
// operation.  Every check re-queries the permission source; a store
// failure is reported separately from a denial so callers can tell
// "no" apart from "don't know".
type Gate struct {
	perms PermissionSource
}

func NewGate(perms PermissionSource) *Gate { return &Gate{perms: perms} }

// CanEmit reports whether the user may chat and save documents:
// any access level above viewer.
func (g *Gate) CanEmit(ctx context.Context, userID, opID uint64) (bool, error) {
	level, ok, err := g.level(ctx, userID, opID)
	if err != nil || !ok {
		return false, err
	}
	return level != model.AccessViewer, nil
}

// CanView reports whether the user holds any permission on the
// operation at all.
func (g *Gate) CanView(ctx context.Context, userID, opID uint64) (bool, error) {
	_, ok, err := g.level(ctx, userID, opID)
	return ok, err
}

// CanAdminister reports whether the user may manage users, rename,
// change metadata or archive: admin or creator.
func (g *Gate) CanAdminister(ctx context.Context, userID, opID uint64) (bool, error) {
	level, ok, err := g.level(ctx, userID, opID)
	if err != nil || !ok {
		return false, err
	}
	return level == model.AccessAdmin || level == model.AccessCreator, nil
}

// CanDelete reports whether the user may delete the operation:
// creator only.
func (g *Gate) CanDelete(ctx context.Context, userID, opID uint64) (bool, error) {
	level, ok, err := g.level(ctx, userID, opID)
	if err != nil || !ok {
		return false, err
	}
	return level == model.AccessCreator, nil
}

func (g *Gate) level(ctx context.Context, userID, opID uint64) (model.AccessLevel, bool, error) {
	perm, err := g.perms.Get(ctx, userID, opID)
	if errors.Is(err, repository.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return perm.AccessLevel, true, nil
}
