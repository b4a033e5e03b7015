package goTOTP

import (
	"context"
	"io"

	internalaudit "github.com/MrEthical07/goTOTP/internal/audit"
)

// TwoFactorMode is the tagged enrollment state of an account's second
// factor. Exactly one mode holds at any time; the mode plus the secret
// fields of [TwoFactor] fully describe where an account sits in the
// enrollment handshake.
type TwoFactorMode uint8

const (
	// TwoFactorDisabled means the account authenticates with password only.
	TwoFactorDisabled TwoFactorMode = iota
	// TwoFactorPending means a provisional secret was generated but the
	// user has not yet proven possession of it. A pending secret never
	// gates login.
	TwoFactorPending
	// TwoFactorEnabled means an active, confirmed secret gates login.
	TwoFactorEnabled
)

// TwoFactor carries the second-factor state of an account.
//
// Secret is the active secret and is set only in [TwoFactorEnabled] mode.
// TempSecret is the unconfirmed secret of an enrollment in progress; it may
// coexist with an active secret when an enabled account is re-enrolling,
// and the active secret stays untouched until the new one is confirmed.
// Both are base32-encoded without padding.
type TwoFactor struct {
	Mode       TwoFactorMode
	Secret     string
	TempSecret string
}

// Validate reports whether the mode and secret fields are consistent.
func (t TwoFactor) Validate() error {
	switch t.Mode {
	case TwoFactorDisabled:
		if t.Secret != "" || t.TempSecret != "" {
			return ErrStoreUnavailable
		}
	case TwoFactorPending:
		if t.Secret != "" || t.TempSecret == "" {
			return ErrStoreUnavailable
		}
	case TwoFactorEnabled:
		if t.Secret == "" {
			return ErrStoreUnavailable
		}
	default:
		return ErrStoreUnavailable
	}
	return nil
}

// UserRecord is the account record exchanged with a [UserStore].
// PasswordHash is a PHC-encoded argon2id hash; plaintext passwords are
// never persisted.
type UserRecord struct {
	ID           string
	PasswordHash string
	TwoFactor    TwoFactor
}

// UserStore is the interface callers implement to integrate goTOTP with
// their user database. The store owns durability; the engine owns the
// semantics of the fields it reads and writes.
//
// UpdateTwoFactor must apply fn under per-user serialization: the read of
// the current state, the call to fn, and the write of its result must be
// atomic with respect to other UpdateTwoFactor calls for the same id. When
// fn returns an error the record is left unchanged and the error is
// returned verbatim.
type UserStore interface {
	Get(ctx context.Context, id string) (UserRecord, error)
	Put(ctx context.Context, record UserRecord) error
	UpdateTwoFactor(ctx context.Context, id string, fn func(TwoFactor) (TwoFactor, error)) (UserRecord, error)
}

// LoginResult is returned by [Engine.Login].
//
// CodeRequested is set when the password verified but the account has an
// active TOTP secret and no code was supplied; it is a protocol step, not
// a failure, and no session token is issued for it.
type LoginResult struct {
	Success       bool
	CodeRequested bool
	SessionToken  string
}

// EnrollmentSetup is returned by [Engine.BeginEnrollment].
type EnrollmentSetup struct {
	SecretBase32 string
	URI          string
	Image        string
}

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's audit
// dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer], one object per line.
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}
