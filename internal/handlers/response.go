package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/mlcatalog-backend/internal/platform/apierr"
	"github.com/yungbote/mlcatalog-backend/internal/types"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondDomainError translates the typed failures from the service layer
// into HTTP statuses. The error kind alone picks the status; messages pass
// through untouched.
func RespondDomainError(c *gin.Context, err error) {
	apiErr := toAPIError(err)
	RespondError(c, apiErr.Status, apiErr.Code, apiErr.Err)
}

func toAPIError(err error) *apierr.Error {
	switch {
	case types.IsNotFound(err):
		return apierr.NotFound("not_found", err)
	case types.IsDuplicateName(err):
		return apierr.Conflict("duplicate_name", err)
	case types.IsAmbiguousReference(err):
		return apierr.Conflict("ambiguous_reference", err)
	case types.IsConcurrentModification(err):
		return apierr.Conflict("concurrent_modification", err)
	case types.IsSelfLoop(err):
		return apierr.Unprocessable("self_loop", err)
	case types.IsValidation(err):
		return apierr.Unprocessable("validation_failed", err)
	default:
		return apierr.Internal("internal_error", err)
	}
}
