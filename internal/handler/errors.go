package handler

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/prperemyshlev/wms-server/internal/dto"
	"github.com/prperemyshlev/wms-server/internal/service"
)

type errorKind struct {
	err    error
	status int
	code   string
}

// Checked in order; the first match wins.
var errorKinds = []errorKind{
	{service.ErrBadRequest, http.StatusBadRequest, "BAD_REQUEST"},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{service.ErrInvalidRefreshToken, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{service.ErrTokenExpired, http.StatusUnauthorized, "TOKEN_EXPIRED"},
	{service.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
	{service.ErrInvalidOAuthState, http.StatusUnauthorized, "INVALID_OAUTH2_STATE"},
	{service.ErrUnsupportedProvider, http.StatusUnauthorized, "UNSUPPORTED_PROVIDER"},
	{service.ErrInvalidProviderResponse, http.StatusUnauthorized, "OAUTH2_PROVIDER_ERROR"},
	{service.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
	{service.ErrNotFound, http.StatusNotFound, "RESOURCE_NOT_FOUND"},
	{service.ErrDuplicateEmail, http.StatusConflict, "DUPLICATE_EMAIL"},
	{service.ErrDuplicateNickname, http.StatusConflict, "DUPLICATE_NICKNAME"},
	{service.ErrDuplicateItemCode, http.StatusConflict, "DUPLICATE_ITEM_CODE"},
	{service.ErrDuplicateOrderNumber, http.StatusConflict, "DUPLICATE_ORDER_NUMBER"},
	{service.ErrInvalidOrderTransition, http.StatusUnprocessableEntity, "INVALID_STATE_TRANSITION"},
	{service.ErrInsufficientStock, http.StatusUnprocessableEntity, "INSUFFICIENT_STOCK"},
	{service.ErrRateLimited, http.StatusTooManyRequests, "RATE_LIMITED"},
}

// classify returns the HTTP status, error code and client message for err
func classify(err error) (int, string, string) {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			message := k.err.Error()
			// deleted accounts and similar details stay in the logs
			if k.status != http.StatusUnauthorized {
				message = err.Error()
			}
			return k.status, k.code, message
		}
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"
}

// respondError writes the error body for err and aborts the request
func respondError(c *gin.Context, err error) {
	status, code, message := classify(err)
	if status == http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
	}

	c.AbortWithStatusJSON(status, errorBody(c, status, code, message))
}

func errorBody(c *gin.Context, status int, code, message string) dto.ErrorResponse {
	return dto.ErrorResponse{
		Status:    status,
		Error:     http.StatusText(status),
		Code:      code,
		Message:   message,
		Path:      c.Request.URL.Path,
		Timestamp: time.Now().UTC(),
	}
}

// respondBindingError reports a request body or query that failed to bind
func respondBindingError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.AbortWithStatusJSON(http.StatusBadRequest,
			errorBody(c, http.StatusBadRequest, "BAD_REQUEST", "malformed request"))
		return
	}

	body := errorBody(c, http.StatusBadRequest, "VALIDATION_ERROR", "request validation failed")
	for _, fe := range verrs {
		body.ValidationErrors = append(body.ValidationErrors, dto.FieldError{
			Field:         fe.Field(),
			RejectedValue: fe.Value(),
			Message:       fieldMessage(fe),
		})
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, body)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be blank"
	case "email":
		return "must be a well-formed email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("length must be at least %s", fe.Param())
		}
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("length must be at most %s", fe.Param())
		}
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", strings.ReplaceAll(fe.Param(), " ", ", "))
	}
	return fmt.Sprintf("failed on the '%s' rule", fe.Tag())
}

// RegisterValidation makes validation errors report JSON field names
func RegisterValidation() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
}
