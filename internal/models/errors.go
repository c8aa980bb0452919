package models

import "errors"

// Сентинельные ошибки сервиса. Слои выше диспетчеризуют их через errors.Is.
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailAlreadyExists  = errors.New("user with this email already exists")
	ErrMobileAlreadyExists = errors.New("user with this mobile number already exists")
	ErrPhoneAlreadyExists  = errors.New("user with this phone already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrTokenInvalid        = errors.New("token is invalid")
	ErrTokenMalformed      = errors.New("token is malformed")
	ErrTokenExpired        = errors.New("token has expired")
	ErrStoreUnavailable    = errors.New("user store is unavailable")
	ErrInternalServer      = errors.New("internal server error")
)

// NonFieldErrors is the key for validation errors that span multiple fields.
const NonFieldErrors = "non_field_errors"

// ValidationErrors keys a message by the offending request field. It is both
// the wire shape of the "errors" object and an error value, so the service
// layer can return field-level failures without a separate channel.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	return "validation failed"
}

// Add records a message for a field. The first failure per field wins.
func (v ValidationErrors) Add(field, message string) {
	if _, ok := v[field]; ok {
		return
	}
	v[field] = message
}

// HasErrors reports whether any field failed.
func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}
