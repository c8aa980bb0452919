// Package validation holds the pure payload validators for registration and
// login. They normalize input (trim, empty-as-absent) and accumulate
// field-keyed errors; persistence-level uniqueness stays with the repository.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"companio-server/internal/models"
)

const minPasswordLength = 8

var (
	emailRegex = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	// Принимаем оба формата: 10 цифр или '+' и 12 цифр
	mobileRegex = regexp.MustCompile(`^[0-9]{10}$|^\+[0-9]{12}$`)
)

// Validation messages.
const (
	msgFieldRequired     = "This field is required."
	msgPasswordTooShort  = "Ensure this field has at least 8 characters."
	msgPasswordsMismatch = "Passwords don't match."
	msgIdentifierNeeded  = "Either email or mobile number is required."
	msgIdentifierBoth    = "Either email or mobile number is required, not both."
	msgInvalidEmail      = "Invalid email address."
	msgInvalidMobile     = "Invalid mobile number."
)

// RegistrationInput is the raw registration payload as bound from the request.
type RegistrationInput struct {
	Email        string
	MobileNumber string
	Phone        string
	Password     string
	Password2    string
	Role         string
}

// RegistrationPayload is a normalized registration payload. Empty Email or
// MobileNumber means the identifier was absent; exactly one is set.
type RegistrationPayload struct {
	Email        string
	MobileNumber string
	Phone        string
	Password     string
	Role         string
}

// LoginInput is the raw login payload as bound from the request.
type LoginInput struct {
	Email        string
	MobileNumber string
	Password     string
}

// LoginPayload is a normalized login payload with exactly one identifier set.
type LoginPayload struct {
	Email        string
	MobileNumber string
	Password     string
}

// ValidateRegistration checks a registration payload and returns either its
// normalized form or the accumulated field-keyed errors. Independent failures
// from the same pass are all reported.
func ValidateRegistration(in RegistrationInput) (*RegistrationPayload, models.ValidationErrors) {
	errs := models.ValidationErrors{}

	validatePasswordPair(in.Password, in.Password2, errs)

	email := strings.TrimSpace(in.Email)
	mobile := strings.TrimSpace(in.MobileNumber)
	validateIdentifiers(email, mobile, errs)

	switch {
	case in.Role == "":
		errs.Add("role", msgFieldRequired)
	case !models.IsValidRole(in.Role):
		errs.Add("role", fmt.Sprintf("%q is not a valid choice.", in.Role))
	}

	if errs.HasErrors() {
		return nil, errs
	}

	return &RegistrationPayload{
		Email:        email,
		MobileNumber: mobile,
		Phone:        strings.TrimSpace(in.Phone),
		Password:     in.Password,
		Role:         in.Role,
	}, nil
}

// ValidateLogin checks a login payload: one-of email/mobile with the same
// format rules as registration, plus a required password. No uniqueness or
// role checks.
func ValidateLogin(in LoginInput) (*LoginPayload, models.ValidationErrors) {
	errs := models.ValidationErrors{}

	switch {
	case in.Password == "":
		errs.Add("password", msgFieldRequired)
	case len(in.Password) < minPasswordLength:
		errs.Add("password", msgPasswordTooShort)
	}

	email := strings.TrimSpace(in.Email)
	mobile := strings.TrimSpace(in.MobileNumber)
	validateIdentifiers(email, mobile, errs)

	if errs.HasErrors() {
		return nil, errs
	}

	return &LoginPayload{
		Email:        email,
		MobileNumber: mobile,
		Password:     in.Password,
	}, nil
}

// validatePasswordPair enforces presence, minimum length and byte-for-byte
// equality of password and password2.
func validatePasswordPair(password, password2 string, errs models.ValidationErrors) {
	switch {
	case password == "":
		errs.Add("password", msgFieldRequired)
	case len(password) < minPasswordLength:
		errs.Add("password", msgPasswordTooShort)
	}

	switch {
	case password2 == "":
		errs.Add("password2", msgFieldRequired)
	case len(password2) < minPasswordLength:
		errs.Add("password2", msgPasswordTooShort)
	case password != "" && password != password2:
		errs.Add("password2", msgPasswordsMismatch)
	}
}

// validateIdentifiers enforces the exactly-one-of rule and the format of
// whichever identifier is present. Inputs are already trimmed.
func validateIdentifiers(email, mobile string, errs models.ValidationErrors) {
	if email == "" && mobile == "" {
		errs.Add(models.NonFieldErrors, msgIdentifierNeeded)
		return
	}
	if email != "" && mobile != "" {
		errs.Add(models.NonFieldErrors, msgIdentifierBoth)
		return
	}

	if email != "" && !emailRegex.MatchString(email) {
		errs.Add("email", msgInvalidEmail)
	}
	if mobile != "" && !mobileRegex.MatchString(mobile) {
		errs.Add("mobile_number", msgInvalidMobile)
	}
}
