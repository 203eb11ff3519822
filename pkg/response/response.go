package response

import (
	"errors"
	"net/http"

	"github.com/UP220404/cielito-home-compras/internal/apierror"
)

// Response represents a standard API response format
type Response struct {
	Status     string      `json:"status"`      // "success" or "error"
	StatusCode int         `json:"status_code"` // HTTP status code
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
	// CurrentStatus is filled for precondition failures so the client can
	// explain why the operation is not available right now.
	CurrentStatus string `json:"current_status,omitempty"`
}

// Success returns a standard success response wrapping the data
func Success(statusCode int, data interface{}) Response {
	return Response{
		Status:     "success",
		StatusCode: statusCode,
		Data:       data,
	}
}

// Error returns a standard error response wrapping the error message
func Error(statusCode int, err string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Error:      err,
	}
}

// FromError maps a business error to its HTTP status code and envelope.
// Unclassified errors become a generic 500 without leaking internals.
func FromError(err error) (int, Response) {
	var e *apierror.Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError, Error(http.StatusInternalServerError, "error interno del servidor")
	}

	code := http.StatusInternalServerError
	switch e.Kind {
	case apierror.KindValidation:
		code = http.StatusBadRequest
	case apierror.KindAuthorization:
		code = http.StatusForbidden
	case apierror.KindNotFound:
		code = http.StatusNotFound
	case apierror.KindConflict:
		code = http.StatusConflict
	case apierror.KindPrecondition:
		code = http.StatusUnprocessableEntity
	}

	resp := Error(code, e.Message)
	resp.CurrentStatus = e.CurrentStatus
	return code, resp
}
