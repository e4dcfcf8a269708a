package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// APIResponse is the envelope every JSON endpoint answers with.
type APIResponse struct {
	Status    int         `json:"status" example:"200"`
	Message   string      `json:"message" example:"OK"`
	RequestID string      `json:"request_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// ValidationError describes one rejected request field.
type ValidationError struct {
	Code    string                 `json:"code,omitempty" example:"ERR_REQUIRED"`
	Field   string                 `json:"field,omitempty" example:"coins[0]"`
	Message string                 `json:"message,omitempty" example:"coins[0] is required"`
	Params  map[string]interface{} `json:"params,omitempty"`
}

// DataResponse writes data in the envelope with the given status.
func DataResponse(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, APIResponse{
		Status:    status,
		Message:   http.StatusText(status),
		RequestID: c.Response().Header().Get(echo.HeaderXRequestID),
		Data:      data,
	})
}

func SuccessResponse(c echo.Context, data interface{}) error {
	return DataResponse(c, http.StatusOK, data)
}

// AcceptedResponse is used for work that continues after the response.
func AcceptedResponse(c echo.Context, data interface{}) error {
	return DataResponse(c, http.StatusAccepted, data)
}

func NoContentResponse(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

func ValidationResponse(c echo.Context, errs []ValidationError) error {
	return DataResponse(c, http.StatusBadRequest, errs)
}

// ErrorResponse renders an AppError with its own status. Anything else is
// reported as a bare 500 so internals never leak.
func ErrorResponse(c echo.Context, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return DataResponse(c, appErr.Status, []*AppError{appErr})
	}
	return DataResponse(c, http.StatusInternalServerError, []*AppError{InternalError("")})
}

// ErrorHandler renders errors that escape handlers, such as unmatched
// routes, in the same envelope.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		appErr := NewStatusError(he.Code, "")
		if msg, ok := he.Message.(string); ok {
			appErr.Message = msg
		}
		err = appErr
	}
	if c.Request().Method == http.MethodHead {
		var appErr *AppError
		status := http.StatusInternalServerError
		if errors.As(err, &appErr) {
			status = appErr.Status
		}
		_ = c.NoContent(status)
		return
	}
	_ = ErrorResponse(c, err)
}
