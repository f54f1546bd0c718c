package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kimyerak/guidely-chat/internal/domain"
)

// Transcribe converts speech to text.
// POST /api/stt
func (h *Handler) Transcribe(c echo.Context) error {
	var req domain.TranscribeRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, invalidBody(err))
	}
	resp, err := h.service.Transcribe(c.Request().Context(), req)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, resp)
}

// Synthesize converts text to speech.
// POST /api/tts
func (h *Handler) Synthesize(c echo.Context) error {
	var req domain.SynthesizeRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, invalidBody(err))
	}
	resp, err := h.service.Synthesize(c.Request().Context(), req)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, resp)
}

// SearchIndex queries the search index.
// POST /api/search-index/query
func (h *Handler) SearchIndex(c echo.Context) error {
	var req domain.SearchRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, invalidBody(err))
	}
	resp, err := h.service.Search(c.Request().Context(), req)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, resp)
}
