package auth

import "errors"

// Operation failure taxonomy. Validation-style failures surface to the caller
// as rejected requests with no partial state change; ErrRegistrationFailed and
// ErrMailTransport are server-side failures.
var (
	ErrVerificationFailed  = errors.New("email verification failed")
	ErrLoginIDTaken        = errors.New("login id already in use")
	ErrEmailTaken          = errors.New("email already in use")
	ErrUnsupportedProvider = errors.New("unsupported identity provider")
	ErrRegistrationFailed  = errors.New("account registration failed")
	ErrCredentialMismatch  = errors.New("account information does not match")
	ErrInvalidCredentials  = errors.New("invalid login id or password")
	ErrMailTransport       = errors.New("mail delivery failed")
)
