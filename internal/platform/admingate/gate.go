// Package admingate protects the staff-facing endpoints with a shared
// passkey. A successful passkey check yields two credentials: an encrypted
// copy of the passkey stored in the accessKey cookie (so a returning browser
// can be re-verified without prompting) and a short-lived signed session
// token for API clients.
package admingate

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidPasskey is returned when the supplied passkey does not match.
	ErrInvalidPasskey = errors.New("invalid passkey")

	// ErrInvalidSession is returned when a session token is missing, expired,
	// or fails signature verification.
	ErrInvalidSession = errors.New("invalid session")
)

// Gate verifies admin passkeys and manages admin sessions.
type Gate struct {
	passkey       string
	encryptionKey []byte
	sessionSecret []byte
	sessionTTL    time.Duration
}

// New creates a Gate. encryptionKey must be 32 bytes (AES-256).
func New(passkey string, encryptionKey, sessionSecret []byte, sessionTTL time.Duration) (*Gate, error) {
	if passkey == "" {
		return nil, errors.New("passkey must not be empty")
	}
	if len(encryptionKey) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes, got %d", len(encryptionKey))
	}
	if len(sessionSecret) == 0 {
		return nil, errors.New("session secret must not be empty")
	}
	return &Gate{
		passkey:       passkey,
		encryptionKey: encryptionKey,
		sessionSecret: sessionSecret,
		sessionTTL:    sessionTTL,
	}, nil
}

// Verify checks a candidate passkey against the configured one in constant
// time.
func (g *Gate) Verify(candidate string) error {
	if subtle.ConstantTimeCompare([]byte(candidate), []byte(g.passkey)) != 1 {
		return ErrInvalidPasskey
	}
	return nil
}

// EncryptKey encrypts the passkey with AES-GCM for storage in the accessKey
// cookie. The output is base64: nonce || ciphertext.
func (g *Gate) EncryptKey() (string, error) {
	block, err := aes.NewCipher(g.encryptionKey)
	if err != nil {
		return "", fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("create GCM: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := gcm.Seal(nonce, nonce, []byte(g.passkey), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// DecryptKey decrypts an accessKey cookie value and returns the passkey it
// holds. Tampered or truncated values fail with ErrInvalidPasskey.
func (g *Gate) DecryptKey(encrypted string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		return "", ErrInvalidPasskey
	}

	block, err := aes.NewCipher(g.encryptionKey)
	if err != nil {
		return "", fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("create GCM: %w", err)
	}

	if len(raw) < gcm.NonceSize() {
		return "", ErrInvalidPasskey
	}
	nonce, ciphertext := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrInvalidPasskey
	}
	return string(plaintext), nil
}

// VerifyEncrypted decrypts an accessKey cookie value and checks the embedded
// passkey. Used to re-admit a browser that passed the gate earlier.
func (g *Gate) VerifyEncrypted(encrypted string) error {
	passkey, err := g.DecryptKey(encrypted)
	if err != nil {
		return err
	}
	return g.Verify(passkey)
}

// sessionClaims are the claims carried by an admin session token.
type sessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// IssueSession creates a signed session token for an admin who passed the
// passkey check.
func (g *Gate) IssueSession(now time.Time) (string, error) {
	claims := sessionClaims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "intake-server",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.sessionTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.sessionSecret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// CheckSession verifies a session token's signature and expiry.
func (g *Gate) CheckSession(tokenString string) error {
	token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return g.sessionSecret, nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidSession
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || claims.Role != "admin" {
		return ErrInvalidSession
	}
	return nil
}

// SessionTTL reports the configured session lifetime.
func (g *Gate) SessionTTL() time.Duration {
	return g.sessionTTL
}
