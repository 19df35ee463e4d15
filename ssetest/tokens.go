package ssetest

import (
	"crypto/rand"
	stderrors "errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var errTokenRevoked = stderrors.New("token revoked")

// tokenIssuer signs HS256 access tokens and remembers which ones were
// revoked.
type tokenIssuer struct {
	key []byte
	ttl time.Duration

	mu      sync.Mutex
	issued  map[string]string // jti -> subject
	revoked map[string]bool
}

func newTokenIssuer(key []byte, ttl time.Duration) *tokenIssuer {
	if len(key) == 0 {
		key = make([]byte, 32)
		_, _ = rand.Read(key)
	}
	return &tokenIssuer{
		key:     key,
		ttl:     ttl,
		issued:  make(map[string]string),
		revoked: make(map[string]bool),
	}
}

func (t *tokenIssuer) issue(subject string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.key)
	if err != nil {
		return "", err
	}
	t.mu.Lock()
	t.issued[claims.ID] = subject
	t.mu.Unlock()
	return signed, nil
}

// verify checks the signature, expiry and revocation of token.
func (t *tokenIssuer) verify(token string) (*jwt.RegisteredClaims, error) {
	claims, err := t.parse(token)
	if err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.revoked[claims.ID] {
		return nil, errTokenRevoked
	}
	return claims, nil
}

// revoke invalidates token and returns its id. Expired tokens can still be
// revoked.
func (t *tokenIssuer) revoke(token string) (string, error) {
	claims, err := t.parse(token, jwt.WithoutClaimsValidation())
	if err != nil {
		return "", err
	}
	t.mu.Lock()
	t.revoked[claims.ID] = true
	t.mu.Unlock()
	return claims.ID, nil
}

// revokeAll invalidates every token issued so far.
func (t *tokenIssuer) revokeAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id := range t.issued {
		t.revoked[id] = true
	}
}

func (t *tokenIssuer) parse(token string, opts ...jwt.ParserOption) (*jwt.RegisteredClaims, error) {
	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return t.key, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	return claims, nil
}
