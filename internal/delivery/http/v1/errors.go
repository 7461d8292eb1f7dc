package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/uptask/uptask-server/internal/services"
)

var errInvalidRequestBody = errors.New("invalid request body")

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func newAPIError(code int, message string) apiError {
	return apiError{
		Code:    code,
		Message: message,
	}
}

func (e apiError) Error() string {
	return e.Message
}

func abort(c *gin.Context, err apiError) {
	c.AbortWithStatusJSON(err.Code, gin.H{"error": err.Message})
}

func newStatusTextError(status int) apiError {
	return newAPIError(status, http.StatusText(status))
}

func newBadRequestError(message string) apiError {
	return newAPIError(http.StatusBadRequest, message)
}

func newUnauthorizedError(message string) apiError {
	return newAPIError(http.StatusUnauthorized, message)
}

func newNotFoundError(message string) apiError {
	return newAPIError(http.StatusNotFound, message)
}

func newForbiddenError(message string) apiError {
	return newAPIError(http.StatusForbidden, message)
}

func newConflictError(message string) apiError {
	return newAPIError(http.StatusConflict, message)
}

// abortServiceError maps the service error kinds onto HTTP statuses.
// Invalid references and missing records rank before permission errors,
// which the services already guarantee by checking them first.
func abortServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidReference),
		errors.Is(err, services.ErrInvalidPriority):
		abort(c, newBadRequestError(err.Error()))
	case errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrTokenNotFound):
		abort(c, newNotFoundError(err.Error()))
	case errors.Is(err, services.ErrForbidden):
		abort(c, newForbiddenError(err.Error()))
	case errors.Is(err, services.ErrAlreadyCollaborator),
		errors.Is(err, services.ErrCreatorAsCollaborator),
		errors.Is(err, services.ErrUserAlreadyExists):
		abort(c, newConflictError(err.Error()))
	default:
		abort(c, newStatusTextError(http.StatusInternalServerError))
	}
}
