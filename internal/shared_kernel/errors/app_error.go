package apperrors

type Type string

const (
	TypeValidation  Type = "validation"
	TypeUnavailable Type = "unavailable"
	TypeInternal    Type = "internal"
)

type AppError struct {
	Type    Type           `json:"type"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Cause   error          `json:"-"`
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}

	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.Cause
}

// WithCause attaches the underlying error. It is not rendered in Details so
// driver messages carrying connection strings stay out of structured output.
func (e *AppError) WithCause(cause error) *AppError {
	if e == nil {
		return nil
	}

	e.Cause = cause
	return e
}

func (e *AppError) WithDetail(key string, value any) *AppError {
	if e == nil {
		return nil
	}

	if e.Details == nil {
		e.Details = map[string]any{}
	}
	e.Details[key] = value
	return e
}

func NewInternal(code, message string, details map[string]any) *AppError {
	return &AppError{
		Type:    TypeInternal,
		Code:    code,
		Message: message,
		Details: details,
	}
}

func NewValidation(code, message string, details map[string]any) *AppError {
	return &AppError{
		Type:    TypeValidation,
		Code:    code,
		Message: message,
		Details: details,
	}
}

func NewUnavailable(code, message string, details map[string]any) *AppError {
	return &AppError{
		Type:    TypeUnavailable,
		Code:    code,
		Message: message,
		Details: details,
	}
}
