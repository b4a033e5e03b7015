package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	goTOTP "github.com/MrEthical07/goTOTP"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusForError maps engine sentinels onto HTTP statuses. The generic
// fallback deliberately reveals nothing about the underlying failure.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, goTOTP.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, goTOTP.ErrTOTPInvalid):
		return http.StatusUnauthorized, "Invalid 2FA code"
	case errors.Is(err, goTOTP.ErrSessionInvalid):
		return http.StatusUnauthorized, "Not logged in"
	case errors.Is(err, goTOTP.ErrNoEnrollmentPending):
		return http.StatusConflict, "No enrollment in progress"
	default:
		return http.StatusInternalServerError, "Something went wrong"
	}
}
