package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

const issuer = "portfolio"

// Signer signs and verifies session tokens with one HMAC secret.
type Signer struct {
	secret []byte
}

// NewSigner returns a signer for secret, which must not be empty.
func NewSigner(secret string) (*Signer, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	return &Signer{secret: []byte(secret)}, nil
}

// Claims is the JWT payload. SessionID binds the token to a server-side session.
type Claims struct {
	UserID    uint   `json:"uid"`
	SessionID string `json:"sid"`
	jwtlib.RegisteredClaims
}

// Sign creates a signed token for the user and session, valid for ttl.
func (s *Signer) Sign(userID uint, sessionID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:    userID,
		SessionID: sessionID,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ID:        sessionID,
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwtlib.NewNumericDate(now),
		},
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Parse validates a token string and returns the claims.
func (s *Signer) Parse(tokenStr string) (*Claims, error) {
	token, err := jwtlib.ParseWithClaims(tokenStr, &Claims{}, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwtlib.WithIssuer(issuer))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.SessionID == "" {
		return nil, fmt.Errorf("token has no session")
	}
	return claims, nil
}
