package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anshulagrawal2902/MSS/internal/middleware"
	"github.com/anshulagrawal2902/MSS/internal/repository"
	"github.com/anshulagrawal2902/MSS/internal/socket"
)

// MessageHandler serves chat history over HTTP.  Live traffic goes
// over the socket; this is the catch-up read on room entry.
type MessageHandler struct {
	Messages *repository.MessageRepo
	Gate     *socket.Gate
}

func NewMessageHandler(messages *repository.MessageRepo, gate *socket.Gate) *MessageHandler {
	return &MessageHandler{Messages: messages, Gate: gate}
}

// List returns the operation's messages oldest first, replies nested
// under their parents.
func (h *MessageHandler) List(c echo.Context) error {
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

	msgs, err := h.Messages.ListByOperation(ctx, opID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list messages failed"})
	}

	threaded := make([]socket.MessagePayload, 0, len(msgs))
	index := make(map[uint64]int)
	for _, m := range msgs {
		if m.ReplyID == nil {
			threaded = append(threaded, socket.NewMessagePayload(m))
			index[m.ID] = len(threaded) - 1
			continue
		}
		if i, ok := index[*m.ReplyID]; ok {
			threaded[i].Replies = append(threaded[i].Replies, socket.NewMessagePayload(m))
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"messages": threaded})
}
