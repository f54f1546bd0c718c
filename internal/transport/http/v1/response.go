package v1

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kimyerak/guidely-chat/internal/domain"
	"github.com/kimyerak/guidely-chat/internal/logger"
)

// Envelope wraps every JSON response.
type Envelope struct {
	Success   bool          `json:"success"`
	Data      interface{}   `json:"data,omitempty"`
	Error     *ErrorPayload `json:"error,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// ErrorPayload is the error part of an Envelope.
type ErrorPayload struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func respond(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, Envelope{Success: true, Data: data, Timestamp: time.Now().UTC()})
}

func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindInvalidState:
		return http.StatusConflict
	case domain.KindInvalidArgument, domain.KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as an error envelope. Unstructured errors are logged and
// reported without their text.
func fail(c echo.Context, err error) error {
	status := statusFor(domain.KindOf(err))
	if status == http.StatusInternalServerError {
		logger.L.Error("request failed",
			"method", c.Request().Method,
			"path", c.Path(),
			"error", err)
		return c.JSON(http.StatusInternalServerError, Envelope{
			Error:     &ErrorPayload{Code: string(domain.KindInternal), Message: "internal server error"},
			Timestamp: time.Now().UTC(),
		})
	}
	var derr *domain.Error
	errors.As(err, &derr)
	return c.JSON(status, Envelope{
		Error:     &ErrorPayload{Code: string(derr.Kind), Message: derr.Message, Details: derr.Details},
		Timestamp: time.Now().UTC(),
	})
}

func invalidBody(err error) *domain.Error {
	return domain.Validation("invalid request body").WithDetail("body", err.Error())
}

// HTTPErrorHandler renders echo routing errors in the envelope format.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code := string(domain.KindInternal)
		switch {
		case he.Code == http.StatusNotFound:
			code = string(domain.KindNotFound)
		case he.Code >= 400 && he.Code < 500:
			code = string(domain.KindValidation)
		}
		_ = c.JSON(he.Code, Envelope{
			Error:     &ErrorPayload{Code: code, Message: fmt.Sprint(he.Message)},
			Timestamp: time.Now().UTC(),
		})
		return
	}

	_ = fail(c, err)
}
