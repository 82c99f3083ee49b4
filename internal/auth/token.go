package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const ResetAudience = "password-reset"

var (
	ErrInvalidToken      = errors.New("invalid or expired token")
	ErrInvalidResetToken = errors.New("invalid or expired token")
)

// Tokens issues and verifies session access tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (t *Tokens) Generate(userID uuid.UUID) (string, error) {
	now := t.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	})
	return token.SignedString(t.secret)
}

// Parse returns the user id carried in a valid access token.
func (t *Tokens) Parse(tokenStr string) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return userID, nil
}

// ResetTokens binds a password reset to an email address. The signing key
// is the app secret concatenated with a dedicated salt, so access tokens
// never verify as reset tokens and the other way around.
type ResetTokens struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewResetTokens(secret, salt string, ttl time.Duration) *ResetTokens {
	return &ResetTokens{key: []byte(secret + salt), ttl: ttl, now: time.Now}
}

func (r *ResetTokens) Issue(email string) (string, error) {
	now := r.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   email,
		Audience:  jwt.ClaimStrings{ResetAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(r.ttl)),
	})
	return token.SignedString(r.key)
}

// Verify returns the email the token was issued for. Every failure is
// reported as ErrInvalidResetToken.
func (r *ResetTokens) Verify(tokenStr string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) {
		return r.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(ResetAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(r.now),
	)
	if err != nil || claims.Subject == "" {
		return "", ErrInvalidResetToken
	}
	return claims.Subject, nil
}
