package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIError is the wire shape of every error response
type APIError struct {
	Status  int         `json:"-"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

func newAPIError(status int, code, message string) *APIError {
	return &APIError{
		Status:  status,
		Code:    code,
		Message: message,
	}
}

func errInternal(message string) *APIError {
	if message == "" {
		message = "internal server error"
	}
	return newAPIError(http.StatusInternalServerError, "internal_error", message)
}

func errBadRequest(code, message string) *APIError {
	return newAPIError(http.StatusBadRequest, code, message)
}

func errUnauthorized(message string) *APIError {
	if message == "" {
		message = "unauthorized"
	}
	return newAPIError(http.StatusUnauthorized, "unauthorized", message)
}

func errNotFound(code, message string) *APIError {
	return newAPIError(http.StatusNotFound, code, message)
}

func errConflict(code, message string) *APIError {
	return newAPIError(http.StatusConflict, code, message)
}

func writeError(c *gin.Context, apiErr *APIError) {
	if apiErr == nil {
		apiErr = errInternal("")
	}

	errorBody := gin.H{
		"code":    apiErr.Code,
		"message": apiErr.Message,
	}
	if apiErr.Details != nil {
		errorBody["details"] = apiErr.Details
	}

	c.JSON(apiErr.Status, gin.H{"error": errorBody})
}

func abortError(c *gin.Context, apiErr *APIError) {
	c.AbortWithStatusJSON(apiErr.Status, gin.H{
		"error": gin.H{
			"code":    apiErr.Code,
			"message": apiErr.Message,
		},
	})
}
