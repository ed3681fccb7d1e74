package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anshulagrawal2902/MSS/internal/middleware"
	"github.com/anshulagrawal2902/MSS/internal/model"
	"github.com/anshulagrawal2902/MSS/internal/repository"
	"github.com/anshulagrawal2902/MSS/internal/socket"
)

// PermissionHandler manages the users attached to an operation.
// Changes fan out to the affected user's connection and to the room.
type PermissionHandler struct {
	Perms  *repository.PermissionRepo
	Gate   *socket.Gate
	Collab *socket.Collab
}

func NewPermissionHandler(perms *repository.PermissionRepo, gate *socket.Gate, collab *socket.Collab) *PermissionHandler {
	return &PermissionHandler{Perms: perms, Gate: gate, Collab: collab}
}

type grantReq struct {
	UserID      uint64 `json:"u_id"`
	AccessLevel string `json:"access_level"`
}
type bulkRevokeReq struct {
	UserIDs []uint64 `json:"u_ids"`
}

// permissionDTO is the wire form of a permission row.
type permissionDTO struct {
	UserID      uint64 `json:"u_id"`
	OpID        uint64 `json:"op_id"`
	AccessLevel string `json:"access_level"`
}

// List returns every permission row on the operation.
func (h *PermissionHandler) List(c echo.Context) error {
	opID, err := pathParamID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	uid := middleware.CurrentUserID(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	if ok, err := h.Gate.CanView(ctx, uid, opID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "permission lookup failed"})
	} else if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	perms, err := h.Perms.ListByOperation(ctx, opID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list permissions failed"})
	}
	out := make([]permissionDTO, 0, len(perms))
	for _, p := range perms {
		out = append(out, permissionDTO{UserID: p.UserID, OpID: p.OpID, AccessLevel: string(p.AccessLevel)})
	}
	return c.JSON(http.StatusOK, echo.Map{"permissions": out})
}

// Grant adds a user to the operation, or changes their level if they
// are already on it.  Creator level cannot be granted or overwritten.
func (h *PermissionHandler) Grant(c echo.Context) error {
	opID, err := pathParamID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req grantReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.UserID == 0 || !model.ValidAccessLevel(req.AccessLevel) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "u_id and access_level required"})
	}
	level := model.AccessLevel(req.AccessLevel)
	if level == model.AccessCreator {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "creator cannot be granted"})
	}

	uid := middleware.CurrentUserID(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	if ok, err := h.Gate.CanAdminister(ctx, uid, opID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "permission lookup failed"})
	} else if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	existing, err := h.Perms.Get(ctx, req.UserID, opID)
	switch {
	case err == nil && existing.AccessLevel == model.AccessCreator:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "creator level is fixed"})
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "permission lookup failed"})
	}
	isNew := errors.Is(err, repository.ErrNotFound)

	if err := h.Perms.Upsert(ctx, req.UserID, opID, level); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "grant failed"})
	}

	if isNew {
		h.Collab.EmitNewPermission(req.UserID, opID)
	} else {
		h.Collab.EmitUpdatePermission(ctx, req.UserID, opID, level)
	}
	h.Collab.EmitOperationPermissionsUpdated(req.UserID, opID)
	return c.NoContent(http.StatusNoContent)
}

// Revoke removes one user from the operation.
func (h *PermissionHandler) Revoke(c echo.Context) error {
	opID, err := pathParamID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req grantReq
	if err := c.Bind(&req); err != nil || req.UserID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "u_id required"})
	}

	uid := middleware.CurrentUserID(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	if ok, err := h.Gate.CanAdminister(ctx, uid, opID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "permission lookup failed"})
	} else if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	if err := h.Perms.Delete(ctx, req.UserID, opID); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "permission not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "creator cannot be revoked"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "revoke failed"})
		}
	}

	h.Collab.EmitRevokePermission(req.UserID, opID)
	h.Collab.EmitOperationPermissionsUpdated(req.UserID, opID)
	return c.NoContent(http.StatusNoContent)
}

// BulkRevoke removes several users at once.  Creator rows are
// skipped by the store; each row actually removed gets its own
// revoke event.
func (h *PermissionHandler) BulkRevoke(c echo.Context) error {
	opID, err := pathParamID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req bulkRevokeReq
	if err := c.Bind(&req); err != nil || len(req.UserIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "u_ids required"})
	}

	uid := middleware.CurrentUserID(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	if ok, err := h.Gate.CanAdminister(ctx, uid, opID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "permission lookup failed"})
	} else if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	removed, err := h.Perms.DeleteBulk(ctx, opID, req.UserIDs)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "bulk revoke failed"})
	}

	for _, id := range removed {
		h.Collab.EmitRevokePermission(id, opID)
		h.Collab.EmitOperationPermissionsUpdated(id, opID)
	}
	return c.JSON(http.StatusOK, echo.Map{"removed": removed})
}
