package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/anshulagrawal2902/MSS/internal/middleware"
	"github.com/anshulagrawal2902/MSS/internal/repository"
	"github.com/anshulagrawal2902/MSS/internal/socket"
)

// documentDTO is the wire form of an operation's document.
type documentDTO struct {
	OpID      uint64    `json:"op_id"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updated_at"`
}

// changeDTO is the wire form of one save record.
type changeDTO struct {
	ID          uint64    `json:"id"`
	OpID        uint64    `json:"op_id"`
	UserID      uint64    `json:"u_id"`
	CommitHash  string    `json:"commit_hash"`
	VersionName string    `json:"version_name"`
	Comment     string    `json:"comment"`
	CreatedAt   time.Time `json:"created_at"`
}

// DocumentHandler reads the stored document and its save history,
// and accepts out-of-session uploads.  Collaborative saves go over
// the socket; this surface exists for scripted clients.
type DocumentHandler struct {
	Changes *repository.ChangeRepo
	Ops     *repository.OperationRepo
	Gate    *socket.Gate
	Collab  *socket.Collab
}

func NewDocumentHandler(changes *repository.ChangeRepo, ops *repository.OperationRepo, gate *socket.Gate, collab *socket.Collab) *DocumentHandler {
	return &DocumentHandler{Changes: changes, Ops: ops, Gate: gate, Collab: collab}
}

// Get returns the operation's current document content.
func (h *DocumentHandler) Get(c echo.Context) error {
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

	doc, err := h.Changes.GetDocument(ctx, opID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "document not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "get document failed"})
	}
	if err := h.Ops.TouchLastUsed(ctx, opID); err != nil {
		c.Logger().Warnf("touch last_used for op %d: %v", opID, err)
	}
	return c.JSON(http.StatusOK, documentDTO{OpID: doc.OpID, Content: doc.Content, UpdatedAt: doc.UpdatedAt})
}

// Save stores a new document version uploaded over HTTP and notifies
// the operation's room.  Collaborator and up.
func (h *DocumentHandler) Save(c echo.Context) error {
	opID, err := pathParamID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req struct {
		Content     string `json:"content"`
		VersionName string `json:"version_name"`
		Comment     string `json:"comment"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	uid := middleware.CurrentUserID(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	if ok, err := h.Gate.CanEmit(ctx, uid, opID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "permission lookup failed"})
	} else if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	change, err := h.Changes.SaveDocument(ctx, opID, uid, req.Content, req.VersionName, req.Comment)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save document failed"})
	}

	h.Collab.EmitFileChange(opID)
	return c.JSON(http.StatusCreated, changeDTO{
		ID:          change.ID,
		OpID:        change.OpID,
		UserID:      change.UserID,
		CommitHash:  change.CommitHash,
		VersionName: change.VersionName,
		Comment:     change.Comment,
		CreatedAt:   change.CreatedAt,
	})
}

// History returns the operation's saves, newest first.
func (h *DocumentHandler) History(c echo.Context) error {
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

	changes, err := h.Changes.ListByOperation(ctx, opID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list changes failed"})
	}
	out := make([]changeDTO, 0, len(changes))
	for _, ch := range changes {
		out = append(out, changeDTO{
			ID:          ch.ID,
			OpID:        ch.OpID,
			UserID:      ch.UserID,
			CommitHash:  ch.CommitHash,
			VersionName: ch.VersionName,
			Comment:     ch.Comment,
			CreatedAt:   ch.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"changes": out})
}
