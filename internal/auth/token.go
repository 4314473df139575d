// ABOUTME: Signed one-shot notices carried across a redirect in a cookie
// ABOUTME: Uses HS256 JWTs with a short expiry and the configured secret

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token errors
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Notice categories
const (
	NoticeSuccess = "success"
	NoticeError   = "error"
)

// NoticeTTL is how long a queued notice survives a redirect.
const NoticeTTL = 60 * time.Second

// Notice is a one-time message shown on the next rendered page.
type Notice struct {
	Category string `json:"c"`
	Message  string `json:"m"`
}

type noticeClaims struct {
	Notices []Notice `json:"n"`
	jwt.RegisteredClaims
}

// NoticeSigner signs and verifies notice cookies.
type NoticeSigner struct {
	secret []byte
	now    func() time.Time
}

// NewNoticeSigner creates a signer with the given secret.
func NewNoticeSigner(secret []byte) *NoticeSigner {
	return &NoticeSigner{secret: secret, now: time.Now}
}

// Sign encodes notices into a token valid for ttl.
func (s *NoticeSigner) Sign(notices []Notice, ttl time.Duration) (string, error) {
	now := s.now()
	claims := noticeClaims{
		Notices: notices,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing notices: %w", err)
	}
	return signed, nil
}

// Verify validates the token and returns the notices it carries.
func (s *NoticeSigner) Verify(tokenString string) ([]Notice, error) {
	var claims noticeClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims.Notices, nil
}
