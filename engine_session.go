package goTOTP

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// IssueSessionToken mints the opaque value carried by the session cookie.
//
// Without a signing key the token is the raw user id, matching the plain
// cookie contract. With [SessionConfig].SigningKey set, the token is an
// HS256-signed claim set whose subject is the user id, so a forged cookie
// no longer grants a session.
func (e *Engine) IssueSessionToken(userID string) (string, error) {
	if e == nil {
		return "", ErrEngineNotReady
	}
	if userID == "" {
		return "", ErrTokenInvalid
	}

	key := e.config.Session.SigningKey
	if len(key) == 0 {
		return userID, nil
	}

	claims := jwt.RegisteredClaims{
		Subject:  userID,
		IssuedAt: jwt.NewNumericDate(time.Now()),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		return "", ErrTokenInvalid
	}
	return signed, nil
}

// ResolveSessionToken maps a cookie value back to a user id. It checks
// presence (and the signature, in signed mode) only; whether the user
// still exists is the concern of the operation being guarded.
func (e *Engine) ResolveSessionToken(token string) (string, error) {
	if e == nil {
		return "", ErrEngineNotReady
	}
	if token == "" {
		return "", ErrSessionInvalid
	}

	key := e.config.Session.SigningKey
	if len(key) == 0 {
		return token, nil
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return "", ErrSessionInvalid
	}
	return claims.Subject, nil
}

// Logout records a session teardown for observability. Cookie clearing is
// transport-level work owned by the HTTP layer; logout always succeeds
// regardless of prior state, so there is nothing to return.
func (e *Engine) Logout(ctx context.Context, token string) {
	if e == nil {
		return
	}

	userID, _ := e.ResolveSessionToken(token)
	e.metricInc(MetricLogout)
	e.emitAudit(ctx, auditEventLogout, true, userID, nil, nil)
}
