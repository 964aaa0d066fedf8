package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/balkashynov/studytrack/internal/tracking"
)

var errInternal = errors.New("internal server error")

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

type DataEnvelope struct {
	Data any `json:"data"`
}

func RespondError(c *gin.Context, status int, code string, err error, details any) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
			Details: details,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, DataEnvelope{Data: payload})
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, DataEnvelope{Data: payload})
}

// StatusFor maps a tracking error to its HTTP status
func StatusFor(err error) int {
	switch {
	case errors.Is(err, tracking.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, tracking.ErrActiveSessionExists), errors.Is(err, tracking.ErrTimeOverlap):
		return http.StatusConflict
	case errors.Is(err, tracking.ErrInvalidInput):
		return http.StatusUnprocessableEntity
	case tracking.IsBusinessError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError writes err returned by the tracking service. Internal
// failures are logged and hidden from the client.
func (h *Handler) respondServiceError(c *gin.Context, err error, details any) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Error("request failed", "request_id", c.GetString(requestIDKey), "path", c.FullPath(), "error", err.Error())
		RespondError(c, status, tracking.CodeInternal, errInternal, nil)
		return
	}

	var verr *tracking.ValidationError
	if details == nil && errors.As(err, &verr) {
		details = verr.Fields
	}
	RespondError(c, status, tracking.Code(err), err, details)
}

// respondBindError reports a malformed request body or query
func respondBindError(c *gin.Context, err error) {
	RespondError(c, http.StatusUnprocessableEntity, tracking.CodeValidation, errors.New("invalid request"), err.Error())
}
