package models

// ErrorResponse is the error envelope. Errors carries field-keyed validation
// messages and is omitted for non-validation failures.
type ErrorResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// AuthResponse is the success envelope for registration and login.
type AuthResponse struct {
	Message string        `json:"message"`
	User    *User         `json:"user"`
	Tokens  *TokenDetails `json:"tokens"`
}
