package store

import (
	goTOTP "github.com/MrEthical07/goTOTP"
)

// persistedTwoFactor is the on-disk/on-wire shape of the second-factor
// state. The nullable fields are the external contract; the tagged
// goTOTP.TwoFactor is the in-memory truth.
type persistedTwoFactor struct {
	Enabled    bool    `json:"enabled"`
	Secret     *string `json:"secret"`
	TempSecret *string `json:"tempSecret"`
}

type persistedUser struct {
	Password  string             `json:"password"`
	TwoFactor persistedTwoFactor `json:"twoFactor"`
}

func encodeUser(u goTOTP.UserRecord) persistedUser {
	p := persistedUser{Password: u.PasswordHash}
	p.TwoFactor.Enabled = u.TwoFactor.Mode == goTOTP.TwoFactorEnabled
	if u.TwoFactor.Secret != "" {
		s := u.TwoFactor.Secret
		p.TwoFactor.Secret = &s
	}
	if u.TwoFactor.TempSecret != "" {
		s := u.TwoFactor.TempSecret
		p.TwoFactor.TempSecret = &s
	}
	return p
}

func decodeUser(id string, p persistedUser) goTOTP.UserRecord {
	u := goTOTP.UserRecord{
		ID:           id,
		PasswordHash: p.Password,
	}

	secret := ""
	if p.TwoFactor.Secret != nil {
		secret = *p.TwoFactor.Secret
	}
	temp := ""
	if p.TwoFactor.TempSecret != nil {
		temp = *p.TwoFactor.TempSecret
	}

	switch {
	case p.TwoFactor.Enabled && secret != "":
		u.TwoFactor = goTOTP.TwoFactor{
			Mode:       goTOTP.TwoFactorEnabled,
			Secret:     secret,
			TempSecret: temp,
		}
	case temp != "":
		// Covers both the pending state and the legacy contradiction
		// enabled=true with a null secret; neither may gate login.
		u.TwoFactor = goTOTP.TwoFactor{
			Mode:       goTOTP.TwoFactorPending,
			TempSecret: temp,
		}
	default:
		u.TwoFactor = goTOTP.TwoFactor{Mode: goTOTP.TwoFactorDisabled}
	}

	return u
}
