package tokenident

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type stubParser struct {
	responses map[string]parseResult
}

type parseResult struct {
	token  *jwt.Token
	claims jwt.MapClaims
	err    error
}

func (s stubParser) Parse(token string) (*jwt.Token, jwt.MapClaims, error) {
	if res, ok := s.responses[token]; ok {
		return res.token, res.claims, res.err
	}
	return nil, nil, errors.New("unexpected token")
}

func TestFromTokenSuccess(t *testing.T) {
	exp := float64(time.Now().Add(time.Minute).Unix())
	parser := stubParser{responses: map[string]parseResult{
		"good": {
			token:  &jwt.Token{Valid: true},
			claims: jwt.MapClaims{"sub": "u1", "email": "a@x.com", "exp": exp},
		},
	}}

	identity, err := FromToken(parser, "good", nil)
	if err != nil {
		t.Fatalf("from token: %v", err)
	}
	if identity.ID != "u1" || identity.Email != "a@x.com" {
		t.Fatalf("unexpected identity: %+v", identity)
	}
}

func TestFromTokenExpired(t *testing.T) {
	exp := float64(time.Now().Add(-time.Minute).Unix())
	parser := stubParser{responses: map[string]parseResult{
		"old": {
			token:  &jwt.Token{Valid: true},
			claims: jwt.MapClaims{"sub": "u1", "exp": exp},
		},
	}}

	if _, err := FromToken(parser, "old", nil); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected expired, got %v", err)
	}
}

func TestFromTokenMissingSubject(t *testing.T) {
	exp := float64(time.Now().Add(time.Minute).Unix())
	parser := stubParser{responses: map[string]parseResult{
		"nosub": {
			token:  &jwt.Token{Valid: true},
			claims: jwt.MapClaims{"email": "a@x.com", "exp": exp},
		},
	}}

	if _, err := FromToken(parser, "nosub", nil); !errors.Is(err, ErrSubjectMissing) {
		t.Fatalf("expected subject missing, got %v", err)
	}
}

func TestFromTokenInvalid(t *testing.T) {
	parser := stubParser{responses: map[string]parseResult{
		"bad": {err: errors.New("bad token")},
	}}

	if _, err := FromToken(parser, "bad", nil); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid, got %v", err)
	}
	if _, err := FromToken(nil, "bad", nil); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("nil parser: %v", err)
	}
}

func TestHMACParserRoundTrip(t *testing.T) {
	const secret = "test-secret"
	parser, err := NewHMACParser(secret)
	if err != nil {
		t.Fatalf("new parser: %v", err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "u1",
		"email": "a@x.com",
		"exp":   time.Now().Add(time.Minute).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	identity, err := FromToken(parser, signed, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if identity.ID != "u1" || identity.Email != "a@x.com" {
		t.Fatalf("unexpected identity: %+v", identity)
	}

	if _, err := FromToken(parser, signed+"tampered", nil); err == nil {
		t.Fatal("tampered token accepted")
	}

	if _, err := NewHMACParser(""); err == nil {
		t.Fatal("empty secret accepted")
	}
}
