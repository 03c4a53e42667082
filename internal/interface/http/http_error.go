package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yanqian/quiz-catalog/pkg/errors"
)

// HTTPError captures the metadata required to serialize an error response consistently.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// NewHTTPError is a helper to build an HTTPError instance.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

var codeStatus = map[string]int{
	apperrors.CodeInvalidInput:        http.StatusBadRequest,
	apperrors.CodeNotFound:            http.StatusNotFound,
	apperrors.CodeConflict:            http.StatusConflict,
	apperrors.CodeUnauthorized:        http.StatusUnauthorized,
	apperrors.CodeAuthFailed:          http.StatusUnauthorized,
	apperrors.CodeUserInactive:        http.StatusForbidden,
	apperrors.CodeForbidden:           http.StatusForbidden,
	apperrors.CodeUpstreamUnavailable: http.StatusBadGateway,
	apperrors.CodePremiumRequired:     http.StatusForbidden,
	apperrors.CodeInternal:            http.StatusInternalServerError,
}

// fromAppError maps a domain error onto the HTTP status table. An explicit
// status on the AppError wins.
func fromAppError(err error) *HTTPError {
	appErr, ok := apperrors.As(err)
	if !ok {
		return nil
	}
	status, known := codeStatus[appErr.Code]
	if !known {
		status = http.StatusInternalServerError
	}
	if appErr.Status > 0 {
		status = appErr.Status
	}
	return &HTTPError{Status: status, Code: appErr.Code, Message: appErr.Message, Err: appErr.Err}
}

func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	if mapped := fromAppError(err); mapped != nil {
		return mapped
	}
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    apperrors.CodeInternal,
		Message: "something went wrong",
		Err:     err,
	}
}

func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

// fail routes any error through the error middleware.
func fail(c *gin.Context, err error) {
	abortWithError(c, asHTTPError(err))
}

func badRequest(c *gin.Context, message string, err error) {
	abortWithError(c, NewHTTPError(http.StatusBadRequest, apperrors.CodeInvalidInput, message, err))
}

func respond(c *gin.Context, status int, msg string, data any) {
	if status == http.StatusNoContent {
		c.Status(status)
		return
	}
	c.JSON(status, gin.H{
		"code":   status,
		"status": "success",
		"msg":    msg,
		"data":   data,
	})
}
