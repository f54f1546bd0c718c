package v1

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kimyerak/guidely-chat/internal/domain"
)

// GenerateCredits returns the ending credits of a session.
// POST /api/ending-credits
func (h *Handler) GenerateCredits(c echo.Context) error {
	ctx := c.Request().Context()

	var req domain.CreditsRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, invalidBody(err))
	}
	if strings.TrimSpace(req.SessionID) == "" {
		return fail(c, domain.InvalidArgument("session_id is required").WithDetail("session_id", "required"))
	}
	includeDuration := true
	if req.IncludeDuration != nil {
		includeDuration = *req.IncludeDuration
	}

	result, err := h.service.GenerateCredits(ctx, req.SessionID, includeDuration)
	if err != nil {
		return fail(c, err)
	}

	return respond(c, http.StatusOK, domain.CreditsResponse{
		SessionID:   result.SessionID,
		Summary:     result.Stats,
		Credits:     result.Credits,
		Summaries:   result.Lines,
		GeneratedAt: result.Record.GeneratedAt,
	})
}
