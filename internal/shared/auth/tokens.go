package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// DefaultTokenTTL is how long a sign-in token stays valid.
const DefaultTokenTTL = 24 * time.Hour

const (
	tokenIssuer = "docforms"
	devSecret   = "dev-secret"
	clockSkew   = time.Minute
)

// Claims is the identity carried by a session token.
type Claims struct {
	Sub     string `json:"sub"`
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
	Iss     string `json:"iss,omitempty"`
	Exp     int64  `json:"exp,omitempty"`
	Iat     int64  `json:"iat,omitempty"`
}

var (
	ErrMissingSecret = errors.New("JWT_SECRET required in production")
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token expired")
)

type tokenHeader struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
}

// Tokens issues and checks HS256 JWTs for signed-in employees.
type Tokens struct {
	secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

// NewTokens requires a secret in production and falls back to a fixed
// development secret elsewhere.
func NewTokens(secret, env string) (*Tokens, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		if strings.EqualFold(strings.TrimSpace(env), "production") {
			return nil, ErrMissingSecret
		}
		secret = devSecret
	}
	return &Tokens{secret: []byte(secret), TTL: DefaultTokenTTL}, nil
}

// Sign fills iat, exp and iss when unset and returns the compact token.
func (t *Tokens) Sign(claims Claims) (string, error) {
	if claims.Sub == "" {
		return "", errors.New("sub is required")
	}
	now := t.now()
	if claims.Iat == 0 {
		claims.Iat = now.Unix()
	}
	if claims.Exp == 0 {
		claims.Exp = now.Add(t.ttl()).Unix()
	}
	if claims.Iss == "" {
		claims.Iss = tokenIssuer
	}

	headerJSON, err := json.Marshal(tokenHeader{Alg: "HS256", Typ: "JWT"})
	if err != nil {
		return "", err
	}
	payloadJSON, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}
	input := base64.RawURLEncoding.EncodeToString(headerJSON) + "." + base64.RawURLEncoding.EncodeToString(payloadJSON)
	return input + "." + t.sign(input), nil
}

// Verify checks the signature, algorithm, issuer and expiry.
func (t *Tokens) Verify(token string) (Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return Claims{}, ErrInvalidToken
	}
	if !hmac.Equal([]byte(parts[2]), []byte(t.sign(parts[0]+"."+parts[1]))) {
		return Claims{}, ErrInvalidToken
	}

	var header tokenHeader
	if err := decodeSegment(parts[0], &header); err != nil || header.Alg != "HS256" {
		return Claims{}, ErrInvalidToken
	}
	var claims Claims
	if err := decodeSegment(parts[1], &claims); err != nil {
		return Claims{}, ErrInvalidToken
	}
	if claims.Sub == "" || (claims.Iss != "" && claims.Iss != tokenIssuer) {
		return Claims{}, ErrInvalidToken
	}

	now := t.now()
	if claims.Exp > 0 && now.Unix() > claims.Exp {
		return Claims{}, ErrExpiredToken
	}
	if claims.Iat > now.Add(clockSkew).Unix() {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}

func decodeSegment(seg string, v any) error {
	raw, err := base64.RawURLEncoding.DecodeString(seg)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

func (t *Tokens) sign(input string) string {
	mac := hmac.New(sha256.New, t.secret)
	mac.Write([]byte(input))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (t *Tokens) now() time.Time {
	if t.Now != nil {
		return t.Now().UTC()
	}
	return time.Now().UTC()
}

func (t *Tokens) ttl() time.Duration {
	if t.TTL > 0 {
		return t.TTL
	}
	return DefaultTokenTTL
}
