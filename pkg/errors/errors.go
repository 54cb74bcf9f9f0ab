package errors

import "errors"

// Error codes shared across domains. Every backend-facing operation wraps
// lower-level failures into one of these so the HTTP layer can map them to a
// status without inspecting transport detail.
const (
	CodeInvalidInput   = "invalid_input"
	CodeModelError     = "model_error"
	CodeFormatError    = "format_error"
	CodeTransportError = "transport_error"
	CodeMapLoadError   = "map_load_error"
	CodeNotFound       = "not_found"
	CodeInvalidToken   = "invalid_token"
	CodeBusy           = "busy"
)

// AppError encodes domain specific error details.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Wrap produces a new AppError instance.
func Wrap(code, message string, err error) error {
	if err == nil {
		return &AppError{Code: code, Message: message}
	}
	return &AppError{Code: code, Message: message, Err: err}
}

// IsCode helps handlers differentiate failures.
func IsCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// UserMessage returns the stable user-facing message, hiding wrapped
// transport detail.
func UserMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
