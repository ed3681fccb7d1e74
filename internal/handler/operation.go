package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/anshulagrawal2902/MSS/internal/middleware"
	"github.com/anshulagrawal2902/MSS/internal/model"
	"github.com/anshulagrawal2902/MSS/internal/repository"
	"github.com/anshulagrawal2902/MSS/internal/socket"
)

// OperationHandler serves the operation CRUD surface.  Mutations are
// mirrored to connected socket clients through Collab.
type OperationHandler struct {
	Ops    *repository.OperationRepo
	Gate   *socket.Gate
	Collab *socket.Collab
}

func NewOperationHandler(ops *repository.OperationRepo, gate *socket.Gate, collab *socket.Collab) *OperationHandler {
	return &OperationHandler{Ops: ops, Gate: gate, Collab: collab}
}

type createOperationReq struct {
	Path        string `json:"path"`
	Description string `json:"description"`
	Category    string `json:"category"`
}
type updateOperationReq struct {
	Path        string `json:"path"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// operationDTO is the wire form of an operation.
type operationDTO struct {
	ID          uint64    `json:"op_id"`
	Path        string    `json:"path"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Active      bool      `json:"active"`
	LastUsed    time.Time `json:"last_used"`
}

func operationToDTO(o model.Operation) operationDTO {
	return operationDTO{
		ID:          o.ID,
		Path:        o.Path,
		Category:    o.Category,
		Description: o.Description,
		Active:      o.Active,
		LastUsed:    o.LastUsed,
	}
}

func pathParamID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

// Create registers a new operation with the caller as creator.
func (h *OperationHandler) Create(c echo.Context) error {
	var req createOperationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Path = strings.TrimSpace(req.Path)
	if req.Path == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "path required"})
	}
	if req.Category == "" {
		req.Category = "default"
	}

	uid := middleware.CurrentUserID(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	id, err := h.Ops.Create(ctx, req.Path, req.Description, req.Category, uid)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "path already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create operation failed"})
	}

	h.Collab.EmitOperationListUpdate()
	return c.JSON(http.StatusCreated, echo.Map{"op_id": id, "path": req.Path})
}

// List returns the operations the caller holds a permission on.
// ?active=false includes archived operations.
func (h *OperationHandler) List(c echo.Context) error {
	uid := middleware.CurrentUserID(c)
	activeOnly := c.QueryParam("active") != "false"

	ctx, cancel := reqCtx(c)
	defer cancel()

	ops, err := h.Ops.ListForUser(ctx, uid, activeOnly)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list operations failed"})
	}
	out := make([]operationDTO, 0, len(ops))
	for _, o := range ops {
		out = append(out, operationToDTO(o))
	}
	return c.JSON(http.StatusOK, echo.Map{"operations": out})
}

// Get returns one operation if the caller can see it.
func (h *OperationHandler) Get(c echo.Context) error {
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

	op, err := h.Ops.GetByID(ctx, opID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "operation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "get operation failed"})
	}
	return c.JSON(http.StatusOK, operationToDTO(op))
}

// Lookup resolves an operation by its unique path, for clients that
// address operations by name.
func (h *OperationHandler) Lookup(c echo.Context) error {
	path := strings.TrimSpace(c.QueryParam("path"))
	if path == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "path required"})
	}
	uid := middleware.CurrentUserID(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	op, err := h.Ops.GetByPath(ctx, path)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "operation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "get operation failed"})
	}
	if ok, err := h.Gate.CanView(ctx, uid, op.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "permission lookup failed"})
	} else if !ok {
		// Hide existence from users without a grant.
		return c.JSON(http.StatusNotFound, echo.Map{"error": "operation not found"})
	}
	return c.JSON(http.StatusOK, operationToDTO(op))
}

// Update changes path, category or description.  Admin and up.
func (h *OperationHandler) Update(c echo.Context) error {
	opID, err := pathParamID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req updateOperationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	uid := middleware.CurrentUserID(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	if ok, err := h.Gate.CanAdminister(ctx, uid, opID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "permission lookup failed"})
	} else if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	if err := h.Ops.Update(ctx, opID, req.Path, req.Category, req.Description); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "operation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update operation failed"})
	}

	h.Collab.EmitOperationListUpdate()
	return c.NoContent(http.StatusNoContent)
}

// SetActive archives or reactivates an operation.  Creator only.
func (h *OperationHandler) SetActive(c echo.Context) error {
	opID, err := pathParamID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req struct {
		Active bool `json:"active"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	uid := middleware.CurrentUserID(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	if ok, err := h.Gate.CanDelete(ctx, uid, opID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "permission lookup failed"})
	} else if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	if err := h.Ops.SetActive(ctx, opID, req.Active); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "operation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "archive operation failed"})
	}

	h.Collab.EmitOperationListUpdate()
	return c.NoContent(http.StatusNoContent)
}

// Delete removes an operation and everything under it.  Creator only.
// Room members learn about it before the rows go away.
func (h *OperationHandler) Delete(c echo.Context) error {
	opID, err := pathParamID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	uid := middleware.CurrentUserID(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	if ok, err := h.Gate.CanDelete(ctx, uid, opID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "permission lookup failed"})
	} else if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	if err := h.Ops.Delete(ctx, opID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "operation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete operation failed"})
	}

	h.Collab.EmitOperationDelete(opID)
	h.Collab.EmitOperationListUpdate()
	return c.NoContent(http.StatusNoContent)
}
