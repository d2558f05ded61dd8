// Package credential resolves the email/password pair used to log in to
// the tracking service, either by decrypting a passed-through encrypted
// token or from static configuration.
package credential

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
)

// Credentials is a resolved login identity. It is scoped to a single
// recording operation and never persisted.
type Credentials struct {
	EmailAddress string
	Password     string
	DeviceID     string
}

// ErrAccountNotLinked is the umbrella failure: the caller has no usable
// credentials and should be directed to link their account. Every
// resolution failure wraps it, so callers can route all of them with a
// single errors.Is check while logs keep the specific cause.
var ErrAccountNotLinked = errors.New("credential: account not linked")

var (
	ErrMissingToken        = fmt.Errorf("%w: no access token in request", ErrAccountNotLinked)
	ErrMalformedEncoding   = fmt.Errorf("%w: token is not valid base64", ErrAccountNotLinked)
	ErrKeyUnavailable      = fmt.Errorf("%w: private key unavailable", ErrAccountNotLinked)
	ErrDecryptionFailed    = fmt.Errorf("%w: token did not decrypt", ErrAccountNotLinked)
	ErrInvalidTokenPayload = fmt.Errorf("%w: token payload invalid", ErrAccountNotLinked)
)

// Resolver produces Credentials for one recording operation.
type Resolver interface {
	Resolve() (Credentials, error)
}

// TokenResolver decrypts an inbound base64-encoded, RSA-OAEP-encrypted
// token carrying {"email": ..., "password": ...}. The private key is read
// from KeyPath on every call; this package performs no network I/O.
type TokenResolver struct {
	Token    string // opaque base64 token from the caller context; empty means not linked
	KeyPath  string
	DeviceID string
}

func (r TokenResolver) Resolve() (Credentials, error) {
	if r.Token == "" {
		return Credentials{}, ErrMissingToken
	}

	ciphertext, err := base64.StdEncoding.DecodeString(r.Token)
	if err != nil {
		return Credentials{}, fmt.Errorf("%w: %v", ErrMalformedEncoding, err)
	}

	key, err := loadPrivateKey(r.KeyPath)
	if err != nil {
		return Credentials{}, fmt.Errorf("%w: %v", ErrKeyUnavailable, err)
	}

	plaintext, err := rsa.DecryptOAEP(sha1.New(), rand.Reader, key, ciphertext, nil)
	if err != nil {
		return Credentials{}, fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}

	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.Unmarshal(plaintext, &payload); err != nil {
		return Credentials{}, fmt.Errorf("%w: %v", ErrInvalidTokenPayload, err)
	}
	if payload.Email == "" {
		return Credentials{}, fmt.Errorf("%w: missing email field", ErrInvalidTokenPayload)
	}
	if payload.Password == "" {
		return Credentials{}, fmt.Errorf("%w: missing password field", ErrInvalidTokenPayload)
	}

	return Credentials{
		EmailAddress: payload.Email,
		Password:     payload.Password,
		DeviceID:     r.DeviceID,
	}, nil
}

// StaticResolver supplies credentials from configuration, bypassing token
// decryption entirely.
type StaticResolver struct {
	Email    string
	Password string
	DeviceID string
}

func (r StaticResolver) Resolve() (Credentials, error) {
	if r.Email == "" || r.Password == "" {
		return Credentials{}, fmt.Errorf("%w: static credentials not configured", ErrAccountNotLinked)
	}
	return Credentials{EmailAddress: r.Email, Password: r.Password, DeviceID: r.DeviceID}, nil
}

// loadPrivateKey reads an RSA private key in PEM form, accepting both
// PKCS#1 and PKCS#8 encodings.
func loadPrivateKey(path string) (*rsa.PrivateKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, fmt.Errorf("no PEM block in %s", path)
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parsing private key from %s: %w", path, err)
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%s: not an RSA private key", path)
	}
	return key, nil
}
