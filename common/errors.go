package common

import (
	"encoding/json"
	"errors"
	"net/http"

	"bizpilot-api/logger"

	"github.com/sirupsen/logrus"
)

// Sentinel errors returned by the token services. Callers must not be able
// to tell apart the different failure causes behind each of these.
var (
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrUserNotFound        = errors.New("user not found")
	ErrUserExists          = errors.New("user with this email already exists")
	ErrInvalidCredentials  = errors.New("invalid email or password")
)

// Machine-readable error codes exposed on the wire.
const (
	CodeAuthHeaderMissing   = "AUTH_HEADER_MISSING"
	CodeInvalidToken        = "INVALID_TOKEN"
	CodeUserNotFound        = "USER_NOT_FOUND"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeInvalidRefreshToken = "INVALID_REFRESH_TOKEN"
	CodeMissingRefreshToken = "MISSING_REFRESH_TOKEN"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeUserExists          = "USER_EXISTS"
	CodeValidationFailed    = "VALIDATION_FAILED"
	CodeInternalError       = "INTERNAL_ERROR"
)

type AppError struct {
	Code      int    `json:"-"`
	ErrorCode string `json:"code"`
	Message   string `json:"message"`
	Err       error  `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func NewAppError(code int, errorCode, message string, err error) *AppError {
	return &AppError{
		Code:      code,
		ErrorCode: errorCode,
		Message:   message,
		Err:       err,
	}
}

func (e *AppError) Send(w http.ResponseWriter) {
	if e.Err != nil {
		logger.Log.WithFields(logrus.Fields{
			"status_code":    e.Code,
			"error_code":     e.ErrorCode,
			"internal_error": e.Err.Error(),
		}).Error(e.Message)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(e.Code)
	json.NewEncoder(w).Encode(e)
}
