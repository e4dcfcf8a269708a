package http

import (
	"fmt"
	"net/http"
)

// AppError is a client-facing failure carrying its HTTP status. Err is
// logged but never serialised.
type AppError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Field   string                 `json:"field,omitempty"`
	Params  map[string]interface{} `json:"params,omitempty"`
	Status  int                    `json:"-"`
	Err     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithParam attaches one detail shown to the client.
func (e *AppError) WithParam(key string, value interface{}) *AppError {
	if e.Params == nil {
		e.Params = make(map[string]interface{})
	}
	e.Params[key] = value
	return e
}

// WithError records the cause.
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// errorCodes maps statuses to the codes clients switch on.
var errorCodes = map[int]string{
	http.StatusBadRequest:          "ERR_BAD_REQUEST",
	http.StatusNotFound:            "ERR_NOT_FOUND",
	http.StatusMethodNotAllowed:    "ERR_METHOD_NOT_ALLOWED",
	http.StatusConflict:            "ERR_CONFLICT",
	http.StatusTooManyRequests:     "ERR_RATE_LIMITED",
	http.StatusInternalServerError: "ERR_INTERNAL",
	http.StatusServiceUnavailable:  "ERR_UNAVAILABLE",
}

// NewStatusError builds an AppError whose code follows from status.
func NewStatusError(status int, message string) *AppError {
	code, ok := errorCodes[status]
	if !ok {
		code = fmt.Sprintf("ERR_HTTP_%d", status)
	}
	if message == "" {
		message = http.StatusText(status)
	}
	return &AppError{Code: code, Message: message, Status: status}
}

func NotFoundError(message string) *AppError {
	return NewStatusError(http.StatusNotFound, message)
}

func BadRequestError(message string) *AppError {
	return NewStatusError(http.StatusBadRequest, message)
}

func ConflictError(message string) *AppError {
	return NewStatusError(http.StatusConflict, message)
}

func InternalError(message string) *AppError {
	return NewStatusError(http.StatusInternalServerError, message)
}

func ServiceUnavailableError(message string) *AppError {
	return NewStatusError(http.StatusServiceUnavailable, message)
}
