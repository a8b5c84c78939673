package util

import (
	"errors"
	"fmt"
)

// 错误类别，业务错误通过 %w 包装这些类别，控制器据此映射 HTTP 状态码
var (
	ErrValidation    = errors.New("validation error")
	ErrAuthorization = errors.New("authorization error")
	ErrForbidden     = errors.New("permission denied")
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrDelivery      = errors.New("delivery error")
)

var (
	ErrUserNotFound         = fmt.Errorf("%w: user not found", ErrNotFound)
	ErrEmailRegistered      = fmt.Errorf("%w: email already registered", ErrConflict)
	ErrInvalidCredentials   = fmt.Errorf("%w: invalid credentials", ErrAuthorization)
	ErrInvalidCronSecret    = fmt.Errorf("%w: invalid cron secret", ErrAuthorization)
	ErrJobNotFound          = fmt.Errorf("%w: job not found", ErrNotFound)
	ErrAlreadyApplied       = fmt.Errorf("%w: already applied to this job", ErrConflict)
	ErrApplicationNotFound  = fmt.Errorf("%w: application not found", ErrNotFound)
	ErrTestNotFound         = fmt.Errorf("%w: test not found", ErrNotFound)
	ErrNoAnswers            = fmt.Errorf("%w: no answers provided", ErrValidation)
	ErrTestAlreadyCompleted = fmt.Errorf("%w: test already completed", ErrConflict)
	ErrInterviewNotFound    = fmt.Errorf("%w: interview not found", ErrNotFound)
	ErrNotificationNotFound = fmt.Errorf("%w: notification not found", ErrNotFound)
)

// Validation 构造一个校验错误
func Validation(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
