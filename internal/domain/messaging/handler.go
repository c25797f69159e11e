package messaging

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/TheSujay/Arogya-Backend/internal/platform/auth"
	"github.com/TheSujay/Arogya-Backend/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes wires the chat endpoints onto the authenticated group. The
// WebSocket path is registered separately by the ws handler; these cover the
// list, history, and REST send fallback.
func (h *Handler) RegisterRoutes(authed *echo.Group) {
	authed.GET("/chat/partners", h.Partners)
	authed.GET("/chat/:id/messages", h.History)
	authed.POST("/chat/:id/messages", h.Send)
	authed.GET("/chat/:id/online", h.Online)
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrEmptyMessage), errors.Is(err, ErrInvalidRecipient):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func pathID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func (h *Handler) Partners(c echo.Context) error {
	ctx := c.Request().Context()
	items, err := h.svc.Partners(ctx, auth.UserIDFromContext(ctx), auth.RoleFromContext(ctx))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "partners": items})
}

func (h *Handler) History(c echo.Context) error {
	otherID, err := pathID(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	ctx := c.Request().Context()
	items, total, err := h.svc.History(ctx, auth.UserIDFromContext(ctx), otherID, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

type sendRequest struct {
	Content string `json:"content"`
}

func (h *Handler) Send(c echo.Context) error {
	receiverID, err := pathID(c)
	if err != nil {
		return err
	}
	var req sendRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	m, err := h.svc.Send(ctx, auth.UserIDFromContext(ctx), auth.RoleFromContext(ctx), receiverID, req.Content)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) Online(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	online, err := h.svc.IsOnline(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "online": online})
}
