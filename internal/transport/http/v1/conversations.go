package v1

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kimyerak/guidely-chat/internal/domain"
	"github.com/kimyerak/guidely-chat/internal/service"
)

// StartConversation starts a new session.
// POST /api/conversations
func (h *Handler) StartConversation(c echo.Context) error {
	ctx := c.Request().Context()

	var req domain.StartSessionRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, invalidBody(err))
	}

	session, err := h.service.StartSession(ctx, req)
	if err != nil {
		return fail(c, err)
	}

	return respond(c, http.StatusCreated, domain.StartSessionResponse{
		SessionID: session.SessionID,
		Status:    session.Status,
		StartedAt: session.StartedAt,
	})
}

// GetConversation returns a session with one page of messages.
// GET /api/conversations/:session_id?page=0&size=20
func (h *Handler) GetConversation(c echo.Context) error {
	ctx := c.Request().Context()
	sessionID := c.Param("session_id")

	page, err := intQuery(c, "page", 0)
	if err != nil {
		return fail(c, err)
	}
	size, err := intQuery(c, "size", service.DefaultPageSize)
	if err != nil {
		return fail(c, err)
	}

	result, err := h.service.GetSessionPage(ctx, sessionID, page, size)
	if err != nil {
		return fail(c, err)
	}

	return respond(c, http.StatusOK, domain.GetSessionResponse{
		SessionID: result.Session.SessionID,
		UserID:    result.Session.UserID,
		Status:    result.Session.Status,
		StartedAt: result.Session.StartedAt,
		EndedAt:   result.Session.EndedAt,
		EndReason: result.Session.EndReason,
		Messages:  result.Messages,
		Total:     result.Total,
		Page:      result.Page,
		Size:      result.Size,
	})
}

// PostMessage appends a message to a session.
// POST /api/conversations/:session_id/messages
func (h *Handler) PostMessage(c echo.Context) error {
	ctx := c.Request().Context()
	sessionID := c.Param("session_id")

	req, role, err := bindMessage(c)
	if err != nil {
		return fail(c, err)
	}

	msg, err := h.service.AppendMessage(ctx, sessionID, role, req.Content, req.Metadata)
	if err != nil {
		return fail(c, err)
	}

	return respond(c, http.StatusOK, msg)
}

// Chat appends a message and the generated assistant reply.
// POST /api/conversations/:session_id/chat?character=
func (h *Handler) Chat(c echo.Context) error {
	ctx := c.Request().Context()
	sessionID := c.Param("session_id")

	req, role, err := bindMessage(c)
	if err != nil {
		return fail(c, err)
	}

	reply, err := h.service.Chat(ctx, sessionID, role, req.Content, strings.TrimSpace(c.QueryParam("character")), req.Metadata)
	if err != nil {
		return fail(c, err)
	}

	return respond(c, http.StatusOK, reply)
}

// EndConversation ends a session.
// PUT /api/conversations/:session_id/end
func (h *Handler) EndConversation(c echo.Context) error {
	ctx := c.Request().Context()
	sessionID := c.Param("session_id")

	var req domain.EndSessionRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, invalidBody(err))
	}

	session, err := h.service.EndSession(ctx, sessionID, req.Reason)
	if err != nil {
		return fail(c, err)
	}

	return respond(c, http.StatusOK, domain.EndSessionResponse{
		SessionID: session.SessionID,
		Status:    session.Status,
		EndedAt:   session.EndedAt,
		Reason:    session.EndReason,
	})
}

func bindMessage(c echo.Context) (*domain.PostMessageRequest, domain.MessageRole, error) {
	var req domain.PostMessageRequest
	if err := c.Bind(&req); err != nil {
		return nil, "", invalidBody(err)
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, "", domain.InvalidArgument("content is required").WithDetail("content", "required")
	}
	role, err := domain.ParseMessageRole(req.Role)
	if err != nil {
		return nil, "", err
	}
	return &req, role, nil
}

func intQuery(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.InvalidArgument("%s must be an integer", name).WithDetail(name, "not an integer")
	}
	return v, nil
}
