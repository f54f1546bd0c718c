package v1

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kimyerak/guidely-chat/internal/domain"
)

// GetEvents lists the event trail of a session.
// GET /api/conversations/:session_id/events?after_ts=&types=&limit=
func (h *Handler) GetEvents(c echo.Context) error {
	ctx := c.Request().Context()
	sessionID := c.Param("session_id")

	var afterTs int64
	if raw := c.QueryParam("after_ts"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fail(c, domain.InvalidArgument("after_ts must be an integer").WithDetail("after_ts", "not an integer"))
		}
		afterTs = v
	}

	var types []string
	if raw := c.QueryParam("types"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				types = append(types, t)
			}
		}
	}

	limit, err := intQuery(c, "limit", 0)
	if err != nil {
		return fail(c, err)
	}

	events, err := h.service.ListEvents(ctx, sessionID, afterTs, types, limit)
	if err != nil {
		return fail(c, err)
	}

	return respond(c, http.StatusOK, domain.EventsResponse{Events: events})
}

// Stream upgrades to a WebSocket that receives the session's events.
// GET /api/conversations/:session_id/stream
func (h *Handler) Stream(c echo.Context) error {
	ctx := c.Request().Context()
	sessionID := c.Param("session_id")

	if h.stream == nil {
		return c.JSON(http.StatusServiceUnavailable, Envelope{
			Error: &ErrorPayload{Code: string(domain.KindInternal), Message: "streaming disabled"},
		})
	}
	if _, err := h.service.GetSession(ctx, sessionID); err != nil {
		return fail(c, err)
	}

	return h.stream.Subscribe(c, sessionID)
}
