package goTOTP

import (
	"errors"
	"strings"
)

// Config defines a public type used by goTOTP APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	// Issuer is the service name embedded in provisioning URIs and shown
	// by authenticator apps.
	Issuer string

	TOTP     TOTPConfig
	Password PasswordConfig
	Session  SessionConfig
	QR       QRConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

// TOTPConfig defines a public type used by goTOTP APIs.
//
// TOTPConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TOTPConfig struct {
	Digits    int
	Period    int
	Algorithm string
	Skew      int
}

// PasswordConfig carries argon2id parameters, mirrored into the password
// package at build time.
type PasswordConfig struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// SessionConfig controls session-token issuance.
//
// With an empty SigningKey the token is the raw user id, matching the
// plain-cookie contract. Setting SigningKey switches to HS256-signed
// tokens whose subject is the user id; existing plain cookies stop
// resolving.
type SessionConfig struct {
	CookieName string
	SigningKey []byte
}

// QRConfig defines a public type used by goTOTP APIs.
//
// QRConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type QRConfig struct {
	// Size is the rendered image edge length in pixels.
	Size int
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process metrics counters.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig describes the defaultconfig operation and its observable behavior.
//
// DefaultConfig may return an error when input validation, dependency calls, or security checks fail.
// DefaultConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Issuer: "goTOTP",
		TOTP: TOTPConfig{
			Digits:    6,
			Period:    30,
			Algorithm: "SHA1",
			Skew:      1,
		},
		Password: PasswordConfig{
			Memory:      64 * 1024,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		Session: SessionConfig{
			CookieName: "id",
		},
		QR: QRConfig{
			Size: 256,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Issuer) == "" {
		return errors.New("issuer must not be empty")
	}
	if c.TOTP.Digits < 6 || c.TOTP.Digits > 10 {
		return errors.New("totp digits must be between 6 and 10")
	}
	if c.TOTP.Period <= 0 {
		return errors.New("totp period must be positive")
	}
	if c.TOTP.Skew < 0 {
		return errors.New("totp skew must not be negative")
	}
	switch strings.ToUpper(c.TOTP.Algorithm) {
	case "", "SHA1", "SHA256", "SHA512":
	default:
		return errors.New("unsupported totp algorithm")
	}
	if strings.TrimSpace(c.Session.CookieName) == "" {
		return errors.New("session cookie name must not be empty")
	}
	if len(c.Session.SigningKey) > 0 && len(c.Session.SigningKey) < 32 {
		return errors.New("session signing key must be at least 32 bytes")
	}
	if c.QR.Size < 64 || c.QR.Size > 2048 {
		return errors.New("qr size must be between 64 and 2048 pixels")
	}
	if c.Audit.Enabled && c.Audit.BufferSize < 0 {
		return errors.New("audit buffer size must not be negative")
	}
	return nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Session.SigningKey = cloneBytes(cfg.Session.SigningKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
