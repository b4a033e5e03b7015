package goTOTP

import (
	"context"
	"errors"
	"time"
)

// dummyPasswordHash is verified against when the user id is unknown, so
// the unknown-id and wrong-password paths cost the same. Parameters match
// DefaultConfig().Password.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=3,p=2" +
	"$AAAAAAAAAAAAAAAAAAAAAA==" +
	"$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA="

// Login verifies id + password and, when the account has an active TOTP
// secret, the supplied code.
//
// Unknown ids and password mismatches both return [ErrInvalidCredentials].
// An enabled account with no code returns a CodeRequested result rather
// than an error; no session token is issued until the code verifies. An
// account whose enrollment is still pending logs in with password alone —
// an unconfirmed secret never gates login.
func (e *Engine) Login(ctx context.Context, id, passwordInput, code string) (*LoginResult, error) {
	if e == nil || e.userStore == nil || e.passwordHash == nil || e.totp == nil {
		return nil, ErrEngineNotReady
	}
	if id == "" || passwordInput == "" {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, "", ErrInvalidCredentials, func() map[string]string {
			return map[string]string{"reason": "missing_input"}
		})
		return nil, ErrInvalidCredentials
	}

	user, err := e.userStore.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// Burn a verification so this path is not observably faster
			// than a password mismatch.
			_, _ = e.passwordHash.Verify(passwordInput, dummyPasswordHash)
			e.metricInc(MetricLoginFailure)
			e.emitAudit(ctx, auditEventLoginFailure, false, "", ErrInvalidCredentials, func() map[string]string {
				return map[string]string{"reason": "user_not_found"}
			})
			return nil, ErrInvalidCredentials
		}
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, id, ErrStoreUnavailable, nil)
		return nil, ErrStoreUnavailable
	}

	ok, err := e.passwordHash.Verify(passwordInput, user.PasswordHash)
	if err != nil || !ok {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, user.ID, ErrInvalidCredentials, func() map[string]string {
			return map[string]string{"reason": "password_mismatch"}
		})
		return nil, ErrInvalidCredentials
	}

	if user.TwoFactor.Mode == TwoFactorEnabled {
		if code == "" {
			e.metricInc(MetricLoginCodeRequested)
			e.emitAudit(ctx, auditEventLoginCodeRequested, true, user.ID, nil, nil)
			return &LoginResult{CodeRequested: true}, nil
		}

		ok, verr := e.totp.VerifyCode(user.TwoFactor.Secret, code, time.Now())
		if verr != nil {
			e.metricInc(MetricTOTPFailure)
			e.metricInc(MetricLoginFailure)
			e.emitAudit(ctx, auditEventLoginFailure, false, user.ID, ErrTOTPUnavailable, nil)
			return nil, ErrTOTPUnavailable
		}
		if !ok {
			e.metricInc(MetricTOTPFailure)
			e.metricInc(MetricLoginFailure)
			e.emitAudit(ctx, auditEventLoginFailure, false, user.ID, ErrTOTPInvalid, func() map[string]string {
				return map[string]string{"reason": "code_mismatch"}
			})
			return nil, ErrTOTPInvalid
		}
		e.metricInc(MetricTOTPSuccess)
	}

	token, err := e.IssueSessionToken(user.ID)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, user.ID, err, func() map[string]string {
			return map[string]string{"reason": "token_issue_failed"}
		})
		return nil, ErrTokenInvalid
	}

	e.metricInc(MetricSessionIssued)
	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLoginSuccess, true, user.ID, nil, nil)
	return &LoginResult{Success: true, SessionToken: token}, nil
}
