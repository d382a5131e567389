package tokenident

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/alekus2/portifolioalek/internal/domain"
)

var (
	ErrInvalidToken   = errors.New("invalid_token")
	ErrTokenExpired   = errors.New("token_expired")
	ErrSubjectMissing = errors.New("subject_missing")
)

type Parser interface {
	Parse(token string) (*jwt.Token, jwt.MapClaims, error)
}

// FromToken extracts the authenticated identity carried by a session access
// token. Used when a session event omits the user object.
func FromToken(parser Parser, token string, nowFn func() time.Time) (*domain.Identity, error) {
	if parser == nil {
		return nil, ErrInvalidToken
	}
	if nowFn == nil {
		nowFn = time.Now
	}
	tok, claims, err := parser.Parse(token)
	if err != nil || tok == nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	if exp, err := claims.GetExpirationTime(); err != nil || exp == nil || nowFn().After(exp.Time) {
		return nil, ErrTokenExpired
	}
	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	if sub == "" {
		return nil, ErrSubjectMissing
	}
	return &domain.Identity{ID: sub, Email: email}, nil
}

type hmacParser struct {
	key []byte
}

// NewHMACParser verifies provider-issued HS256 tokens with the shared secret.
func NewHMACParser(secret string) (Parser, error) {
	if secret == "" {
		return nil, errors.New("jwt secret required")
	}
	return &hmacParser{key: []byte(secret)}, nil
}

func (p *hmacParser) Parse(tokenStr string) (*jwt.Token, jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithLeeway(30*time.Second))
	token, err := parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return p.key, nil
	})
	return token, claims, err
}
