// Package apperr defines the operational error taxonomy shared by all
// services. Every error here is expected and safe to show to a caller;
// anything else that bubbles out of a service is treated as an internal
// fault and must not leak detail past the transport boundary.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Stable error codes, used by the transport layer and by clients.
const (
	CodeUnauthorized          = "UNAUTHORIZED"
	CodeForbidden             = "FORBIDDEN"
	CodeNotFound              = "NOT_FOUND"
	CodeConflict              = "CONFLICT"
	CodeValidation            = "VALIDATION_ERROR"
	CodeInternal              = "INTERNAL_ERROR"
	CodeSelfApprovalForbidden = "SELF_APPROVAL_FORBIDDEN"
	CodeImmutableTimesheet    = "IMMUTABLE_TIMESHEET"
	CodeInvalidTransition     = "INVALID_TRANSITION"
	CodeMaxHoursExceeded      = "MAX_HOURS_EXCEEDED"
	CodeBackdatingNotAllowed  = "BACKDATING_NOT_ALLOWED"
	CodeDescriptionRequired   = "DESCRIPTION_REQUIRED"
	CodeCopyWeekDisabled      = "COPY_WEEK_DISABLED"
	CodeNotDirectReport       = "NOT_DIRECT_REPORT"
	CodeNotAssigned           = "EMPLOYEE_NOT_ASSIGNED"
)

// Error is an operational application error with a stable code and the
// HTTP status the transport layer should map it to.
type Error struct {
	Code    string
	Status  int
	Message string

	cause error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// HasCode reports whether err is an operational error with the given code.
func HasCode(err error, code string) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Code == code
}

// From extracts the operational error from err, if there is one.
func From(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func Unauthorized(message string) *Error {
	if message == "" {
		message = "authentication required"
	}
	return &Error{Code: CodeUnauthorized, Status: http.StatusUnauthorized, Message: message}
}

func Forbidden(message string) *Error {
	if message == "" {
		message = "access denied"
	}
	return &Error{Code: CodeForbidden, Status: http.StatusForbidden, Message: message}
}

// NotFound deliberately uses the same shape for "does not exist" and
// "exists but outside the caller's scope" so ids cannot be probed.
func NotFound(resource string) *Error {
	return &Error{Code: CodeNotFound, Status: http.StatusNotFound, Message: resource + " not found"}
}

func Conflict(message string) *Error {
	return &Error{Code: CodeConflict, Status: http.StatusConflict, Message: message}
}

func Validation(message string) *Error {
	return &Error{Code: CodeValidation, Status: http.StatusBadRequest, Message: message}
}

func SelfApprovalForbidden(action string) *Error {
	return &Error{
		Code:    CodeSelfApprovalForbidden,
		Status:  http.StatusForbidden,
		Message: fmt.Sprintf("managers cannot %s their own timesheets", action),
	}
}

func NotDirectReport() *Error {
	return &Error{
		Code:    CodeNotDirectReport,
		Status:  http.StatusForbidden,
		Message: "you can only manage timesheets of your direct reports",
	}
}

func NotAssigned() *Error {
	return &Error{
		Code:    CodeNotAssigned,
		Status:  http.StatusForbidden,
		Message: "you are not assigned to this project",
	}
}

func ImmutableTimesheet() *Error {
	return &Error{
		Code:    CodeImmutableTimesheet,
		Status:  http.StatusForbidden,
		Message: "timesheet cannot be modified after submission",
	}
}

func InvalidTransition(from, to string) *Error {
	return &Error{
		Code:    CodeInvalidTransition,
		Status:  http.StatusBadRequest,
		Message: fmt.Sprintf("cannot transition timesheet from %s to %s", from, to),
	}
}

func MaxHoursExceeded(max float64) *Error {
	return &Error{
		Code:    CodeMaxHoursExceeded,
		Status:  http.StatusBadRequest,
		Message: fmt.Sprintf("cannot log more than %g hours per day", max),
	}
}

func BackdatingNotAllowed() *Error {
	return &Error{
		Code:    CodeBackdatingNotAllowed,
		Status:  http.StatusBadRequest,
		Message: "backdated timesheets are not allowed",
	}
}

func DescriptionRequired() *Error {
	return &Error{
		Code:    CodeDescriptionRequired,
		Status:  http.StatusBadRequest,
		Message: "description is required for each day with logged hours",
	}
}

func CopyWeekDisabled() *Error {
	return &Error{
		Code:    CodeCopyWeekDisabled,
		Status:  http.StatusBadRequest,
		Message: "copy previous week feature is disabled",
	}
}

// Internal wraps an unexpected fault. The message shown to callers is
// generic; the underlying error stays available for logging via Unwrap.
func Internal(err error) *Error {
	return &Error{Code: CodeInternal, Status: http.StatusInternalServerError, Message: "internal server error", cause: err}
}
