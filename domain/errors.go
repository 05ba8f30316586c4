package domain

import "errors"

// Authentication errors
var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrRegistrationRejected = errors.New("registration rejected")
	ErrOperationInFlight    = errors.New("session operation already in flight")
)

// Token errors
var (
	ErrTokenMalformed = errors.New("malformed token")
	ErrTokenExpired   = errors.New("token has expired")
)

// Session errors
var (
	ErrSessionExpired = errors.New("session has expired")
	ErrKeyNotFound    = errors.New("session key not found")
)

// Portal API errors
var (
	ErrBackendUnavailable = errors.New("portal api unavailable")
	ErrMalformedResponse  = errors.New("malformed portal api response")
	ErrComplaintNotFound  = errors.New("complaint not found")
)

// Admin login wizard errors
var (
	ErrWizardBadTransition = errors.New("wizard step not allowed from current state")
	ErrOTPInvalid          = errors.New("invalid otp code")
)

// Authorization errors
var (
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrInsufficientRole = errors.New("insufficient role permissions")
)
