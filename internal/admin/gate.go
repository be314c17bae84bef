// Package admin implements the shared-secret gate in front of the admin view.
//
// The "encryption" here is a reversible base64 encoding of the passkey. It
// obfuscates the stored token against casual inspection of client storage and
// nothing more: anyone who reads this code can decode it. It is deliberately
// not cryptographic access control, and there is no per-user identity, expiry
// or revocation behind it. Rotating ADMIN_PASSKEY invalidates every issued
// token on its next check.
package admin

import (
	"encoding/base64"
	"errors"
)

var ErrInvalidPasskey = errors.New("invalid passkey")

// EncryptKey encodes a passkey into the token form persisted client-side.
func EncryptKey(key string) string {
	return base64.StdEncoding.EncodeToString([]byte(key))
}

// DecryptKey reverses EncryptKey.
func DecryptKey(token string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// Gate compares entered passkeys and issued tokens against the configured
// secret.
type Gate struct {
	passkey string
}

func NewGate(passkey string) *Gate {
	return &Gate{passkey: passkey}
}

// Verify checks an entered passkey. On success it returns the token the
// client should persist so later visits skip the prompt.
func (g *Gate) Verify(entered string) (string, error) {
	if entered != g.passkey {
		return "", ErrInvalidPasskey
	}
	return EncryptKey(g.passkey), nil
}

// Check reports whether a previously issued token still unlocks the gate.
// A corrupted token or a rotated passkey re-locks the admin view.
func (g *Gate) Check(token string) bool {
	key, err := DecryptKey(token)
	if err != nil {
		return false
	}
	return key == g.passkey
}
