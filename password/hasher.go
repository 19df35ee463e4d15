// Package password produces the deterministic password digests that login
// endpoints compare against their stored hashes.
//
// Usage:
//
//	hasher := password.NewDigestHasher()
//	hash, err := hasher.Hash("my-password")
//	err = hasher.Verify("my-password", hash)
package password

import (
	"crypto/sha1" //nolint:gosec // matches the backend's stored digest format
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// ErrMismatch is returned by Verify when the password does not match.
var ErrMismatch = errors.New("password does not match")

// Hasher defines the interface for password hashing and verification.
type Hasher interface {
	// Hash returns a hashed representation of the password.
	Hash(password string) (string, error)

	// Verify checks if a password matches the given hash.
	// Returns nil if they match, an error otherwise.
	Verify(password, hash string) error
}

// DigestHasher implements Hasher with an unsalted digest, so the same
// password always yields the same string.
type DigestHasher struct {
	algorithm Algorithm
	encoding  Encoding
	pepper    string
}

// DigestOption configures the digest hasher.
type DigestOption func(*DigestHasher)

// WithAlgorithm selects the digest algorithm.
func WithAlgorithm(a Algorithm) DigestOption {
	return func(h *DigestHasher) { h.algorithm = a }
}

// WithEncoding selects the output encoding.
func WithEncoding(e Encoding) DigestOption {
	return func(h *DigestHasher) { h.encoding = e }
}

// WithPepper sets a fixed prefix mixed into every password.
func WithPepper(p string) DigestOption {
	return func(h *DigestHasher) { h.pepper = p }
}

// NewDigestHasher creates a SHA-1/hex hasher unless options say otherwise.
func NewDigestHasher(opts ...DigestOption) *DigestHasher {
	h := &DigestHasher{algorithm: AlgorithmSHA1, encoding: EncodingHex}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Hash returns the encoded digest of the password.
func (h *DigestHasher) Hash(password string) (string, error) {
	sum, err := h.digest([]byte(h.pepper + password))
	if err != nil {
		return "", err
	}
	switch h.encoding {
	case EncodingBase64:
		return base64.StdEncoding.EncodeToString(sum), nil
	case EncodingHex, "":
		return hex.EncodeToString(sum), nil
	default:
		return "", fmt.Errorf("unsupported encoding: %s", h.encoding)
	}
}

// Verify checks a password against an encoded digest in constant time.
func (h *DigestHasher) Verify(password, hash string) error {
	computed, err := h.Hash(password)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(computed), []byte(hash)) != 1 {
		return ErrMismatch
	}
	return nil
}

func (h *DigestHasher) digest(b []byte) ([]byte, error) {
	switch h.algorithm {
	case AlgorithmSHA1, "":
		s := sha1.Sum(b) //nolint:gosec
		return s[:], nil
	case AlgorithmSHA256:
		s := sha256.Sum256(b)
		return s[:], nil
	case AlgorithmSHA512:
		s := sha512.Sum512(b)
		return s[:], nil
	case AlgorithmBlake2b:
		s := blake2b.Sum256(b)
		return s[:], nil
	default:
		return nil, fmt.Errorf("unsupported algorithm: %s", h.algorithm)
	}
}
