package goTOTP

import (
	"context"
	"errors"
	"time"
)

// BeginEnrollment generates a provisional TOTP secret for id, persists it
// on the account, and returns the provisioning URI plus its QR rendering.
//
// Restarting enrollment always replaces a previous unconfirmed secret; an
// active secret stays live until the replacement is confirmed. The caller
// is responsible for having authenticated id; a missing record maps to
// [ErrSessionInvalid] because the only way to reach this operation with an
// unknown id is a stale session.
func (e *Engine) BeginEnrollment(ctx context.Context, id string) (*EnrollmentSetup, error) {
	if e == nil || e.userStore == nil || e.totp == nil || e.qr == nil {
		return nil, ErrEngineNotReady
	}
	if id == "" {
		return nil, ErrSessionInvalid
	}

	if _, err := e.userStore.Get(ctx, id); err != nil {
		e.metricInc(MetricEnrollFailure)
		if errors.Is(err, ErrUserNotFound) {
			e.emitAudit(ctx, auditEventEnrollFailure, false, id, ErrSessionInvalid, nil)
			return nil, ErrSessionInvalid
		}
		e.emitAudit(ctx, auditEventEnrollFailure, false, id, ErrStoreUnavailable, nil)
		return nil, ErrStoreUnavailable
	}

	secret, err := e.totp.GenerateSecret()
	if err != nil {
		e.metricInc(MetricEnrollFailure)
		e.emitAudit(ctx, auditEventEnrollFailure, false, id, ErrTOTPUnavailable, nil)
		return nil, ErrTOTPUnavailable
	}

	uri := e.totp.ProvisionURI(secret, id)
	image, err := e.qr.DataURI(uri)
	if err != nil {
		e.metricInc(MetricEnrollFailure)
		e.emitAudit(ctx, auditEventEnrollFailure, false, id, ErrQRUnavailable, nil)
		return nil, ErrQRUnavailable
	}

	if _, err := e.userStore.UpdateTwoFactor(ctx, id, func(tf TwoFactor) (TwoFactor, error) {
		tf.TempSecret = secret
		if tf.Mode == TwoFactorDisabled {
			tf.Mode = TwoFactorPending
		}
		return tf, nil
	}); err != nil {
		e.metricInc(MetricEnrollFailure)
		if errors.Is(err, ErrUserNotFound) {
			e.emitAudit(ctx, auditEventEnrollFailure, false, id, ErrSessionInvalid, nil)
			return nil, ErrSessionInvalid
		}
		e.emitAudit(ctx, auditEventEnrollFailure, false, id, ErrStoreUnavailable, nil)
		return nil, ErrStoreUnavailable
	}

	e.metricInc(MetricEnrollStarted)
	e.emitAudit(ctx, auditEventEnrollStarted, true, id, nil, nil)
	return &EnrollmentSetup{
		SecretBase32: secret,
		URI:          uri,
		Image:        image,
	}, nil
}

// ConfirmEnrollment promotes the provisional secret of id to the active
// one when code verifies against it. This is the only path that activates
// a second factor.
//
// The verify-then-promote step runs inside the store's per-user
// transactional update, so a concurrent [Engine.BeginEnrollment] cannot
// replace the provisional secret between the check and the write. A bad
// code leaves the pending state unchanged so the user can retry.
func (e *Engine) ConfirmEnrollment(ctx context.Context, id, code string) error {
	if e == nil || e.userStore == nil || e.totp == nil {
		return ErrEngineNotReady
	}
	if id == "" {
		return ErrSessionInvalid
	}

	now := time.Now()
	_, err := e.userStore.UpdateTwoFactor(ctx, id, func(tf TwoFactor) (TwoFactor, error) {
		if tf.TempSecret == "" {
			return tf, ErrNoEnrollmentPending
		}

		ok, verr := e.totp.VerifyCode(tf.TempSecret, code, now)
		if verr != nil {
			return tf, ErrTOTPUnavailable
		}
		if !ok {
			return tf, ErrTOTPInvalid
		}

		return TwoFactor{
			Mode:   TwoFactorEnabled,
			Secret: tf.TempSecret,
		}, nil
	})
	if err != nil {
		e.metricInc(MetricEnrollFailure)
		switch {
		case errors.Is(err, ErrTOTPInvalid):
			e.metricInc(MetricTOTPFailure)
			e.emitAudit(ctx, auditEventEnrollFailure, false, id, err, func() map[string]string {
				return map[string]string{"reason": "code_mismatch"}
			})
			return err
		case errors.Is(err, ErrNoEnrollmentPending), errors.Is(err, ErrTOTPUnavailable):
			e.emitAudit(ctx, auditEventEnrollFailure, false, id, err, nil)
			return err
		case errors.Is(err, ErrUserNotFound):
			e.emitAudit(ctx, auditEventEnrollFailure, false, id, ErrSessionInvalid, nil)
			return ErrSessionInvalid
		default:
			e.emitAudit(ctx, auditEventEnrollFailure, false, id, ErrStoreUnavailable, nil)
			return ErrStoreUnavailable
		}
	}

	e.metricInc(MetricTOTPSuccess)
	e.metricInc(MetricEnrollConfirmed)
	e.emitAudit(ctx, auditEventEnrollConfirmed, true, id, nil, nil)
	return nil
}
