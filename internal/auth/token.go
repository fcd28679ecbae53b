package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Identity is the payload embedded in a session token.
type Identity struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
}

// Issuer signs and verifies HS256 session tokens. It holds no mutable state
// and is safe for concurrent use.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock returns a copy of the issuer reading time from now.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	cp := *i
	cp.now = now
	return &cp
}

// TTL is the lifetime of issued tokens.
func (i *Issuer) TTL() time.Duration { return i.ttl }

// Issue signs a token for id/username expiring after the issuer's TTL.
func (i *Issuer) Issue(id int, username string) (string, error) {
	now := i.now()
	claims := jwt.MapClaims{
		"id":       id,
		"username": username,
		"iat":      now.Unix(),
		"exp":      now.Add(i.ttl).Unix(),
		"jti":      uuid.NewString(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of raw and returns its identity.
func (i *Issuer) Verify(raw string) (Identity, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	claims := jwt.MapClaims{}
	tok, err := parser.ParseWithClaims(raw, claims, i.keyFunc)
	if err != nil || !tok.Valid {
		return Identity{}, ErrInvalidToken
	}
	return i.validate(claims)
}

// validate applies the session rules to signature-checked claims: exp is
// required and compared against the issuer's clock.
func (i *Issuer) validate(claims jwt.MapClaims) (Identity, error) {
	if !claims.VerifyExpiresAt(i.now().Unix(), true) {
		return Identity{}, ErrTokenExpired
	}
	return identityFromClaims(claims)
}

func (i *Issuer) keyFunc(*jwt.Token) (interface{}, error) {
	return i.secret, nil
}

func identityFromClaims(claims jwt.MapClaims) (Identity, error) {
	username, _ := claims["username"].(string)
	var id int
	switch v := claims["id"].(type) {
	case float64:
		id = int(v)
	case int:
		id = v
	case int64:
		id = int(v)
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return Identity{}, ErrInvalidToken
		}
		id = n
	default:
		return Identity{}, ErrInvalidToken
	}
	if username == "" {
		return Identity{}, ErrInvalidToken
	}
	return Identity{ID: id, Username: username}, nil
}
