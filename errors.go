package goTOTP

import "errors"

var (
	// ErrInvalidCredentials is returned by [Engine.Login] for an unknown
	// user id or a password mismatch. The two cases are deliberately
	// indistinguishable to callers.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrTOTPInvalid is returned when a submitted code does not verify
	// against the relevant secret.
	ErrTOTPInvalid = errors.New("invalid totp code")
	// ErrTOTPUnavailable is returned when secret generation or code
	// verification fails for an internal reason.
	ErrTOTPUnavailable = errors.New("totp backend unavailable")
	// ErrSessionInvalid is returned when a session token is missing,
	// malformed, or names a user that no longer exists.
	ErrSessionInvalid = errors.New("session invalid")
	// ErrNoEnrollmentPending is returned by [Engine.ConfirmEnrollment]
	// when the account has no provisional secret to confirm.
	ErrNoEnrollmentPending = errors.New("no enrollment in progress")
	// ErrUserNotFound is returned by [UserStore] implementations when the
	// requested id has no record.
	ErrUserNotFound = errors.New("user not found")
	// ErrStoreUnavailable is returned when the user store fails for a
	// reason other than a missing record.
	ErrStoreUnavailable = errors.New("user store unavailable")
	// ErrQRUnavailable is returned when provisioning-URI rendering fails.
	ErrQRUnavailable = errors.New("qr rendering unavailable")
	// ErrTokenInvalid is returned when a session token cannot be issued
	// or parsed.
	ErrTokenInvalid = errors.New("invalid session token")
	// ErrEngineNotReady is returned when an engine method is called on a
	// nil or incompletely built engine.
	ErrEngineNotReady = errors.New("engine not ready")
)
