package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/erp/purchasing/internal/domain/shared"
	"github.com/erp/purchasing/internal/infrastructure/logger"
)

// Error codes carried in ErrorResponse
const (
	ErrCodeBadRequest = "BAD_REQUEST"
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeNotFound   = "NOT_FOUND"
	ErrCodeInternal   = "INTERNAL_ERROR"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Code      string             `json:"code"`
	Message   string             `json:"message"`
	Details   []shared.Violation `json:"details,omitempty"`
	RequestID string             `json:"requestId,omitempty"`
}

// BaseHandler provides common handler utilities
type BaseHandler struct{}

func getRequestID(c *gin.Context) string {
	return c.GetString(logger.RequestIDField)
}

// Error sends an error response with the given status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, ErrorResponse{Code: code, Message: message, RequestID: getRequestID(c)})
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, ErrCodeNotFound, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, ErrCodeInternal, message)
}

// ValidationError sends a 400 validation error response with details
func (h *BaseHandler) ValidationError(c *gin.Context, err *shared.ValidationError) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Code:      ErrCodeValidation,
		Message:   err.Error(),
		Details:   err.Violations,
		RequestID: getRequestID(c),
	})
}

// HandleError maps an error from the store onto an HTTP response
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	var validationErr *shared.ValidationError
	if errors.As(err, &validationErr) {
		h.ValidationError(c, validationErr)
		return
	}
	switch shared.KindOf(err) {
	case shared.ErrorKindNotFound:
		h.NotFound(c, err.Error())
	default:
		logger.ForRequest(c).Error("Request failed", zap.Error(err))
		h.InternalError(c, "internal server error")
	}
}
