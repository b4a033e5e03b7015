// Package goTOTP implements password + TOTP two-factor authentication with
// QR-code based enrollment.
//
// The engine is built once via the [Builder] and is safe for concurrent use:
//
//	engine, err := goTOTP.New().
//		WithConfig(goTOTP.DefaultConfig()).
//		WithUserStore(users).
//		Build()
//
// Callers supply a [UserStore] (in-memory, JSON file, and Redis
// implementations live in the store subpackage) and drive three flows:
//
//   - [Engine.Login] verifies id + password and, when the account has an
//     active TOTP secret, a numeric code. A login against an enabled
//     account without a code is not an error; it returns
//     [LoginResult].CodeRequested so the caller can prompt for the second
//     factor.
//   - [Engine.BeginEnrollment] generates a provisional secret, persists it
//     on the account without touching any active secret, and returns an
//     otpauth:// provisioning URI rendered as an embeddable QR data URI.
//   - [Engine.ConfirmEnrollment] promotes the provisional secret to the
//     active one, but only when the submitted code proves possession of it.
//     The verify-then-promote step runs inside the store's per-user
//     transactional update so a concurrent re-enrollment cannot swap the
//     provisional secret mid-check.
//
// The httpapi subpackage exposes the flows over HTTP with cookie transport;
// cmd/server is the runnable service.
package goTOTP
