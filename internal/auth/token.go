// Package auth issues and verifies session tokens and hashes passwords.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/BuzzLyutic/task-tracker/internal/model"
)

var ErrInvalidToken = errors.New("invalid token")

type claims struct {
	jwt.RegisteredClaims
	UserID int64  `json:"id"`
	Email  string `json:"email"`
}

// TokenIssuer signs HS256 session tokens with a shared secret. A zero TTL
// issues tokens without an exp claim.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (i *TokenIssuer) Issue(userID int64, email string) (string, error) {
	now := i.now().UTC()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  strconv.FormatInt(userID, 10),
			IssuedAt: jwt.NewNumericDate(now),
		},
		UserID: userID,
		Email:  email,
	}
	if i.ttl > 0 {
		c.ExpiresAt = jwt.NewNumericDate(now.Add(i.ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature (HMAC only) and expiry and returns the
// identity the token was issued for.
func (i *TokenIssuer) Verify(raw string) (model.Identity, error) {
	c := &claims{}
	tok, err := jwt.ParseWithClaims(raw, c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil || !tok.Valid {
		return model.Identity{}, ErrInvalidToken
	}
	if c.UserID == 0 {
		return model.Identity{}, ErrInvalidToken
	}
	return model.Identity{UserID: c.UserID, Email: c.Email}, nil
}
