package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrTokenInvalid = errors.New("invalid download token")
	ErrTokenExpired = errors.New("download token expired")
)

// SignedToken is an issued download token.
type SignedToken struct {
	Value     string
	ExpiresAt time.Time
}

// TokenClaims is the content recovered from a valid token.
type TokenClaims struct {
	ResourceID string
	Name       string
	ExpiresAt  time.Time
}

// SignedURLSigner creates and validates HMAC download tokens bound to a resource and file name.
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSignedURLSigner constructs a signer with the provided secret and TTL.
func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &SignedURLSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Generate issues a token for the file name owned by resourceID.
func (s *SignedURLSigner) Generate(resourceID, name string) (SignedToken, error) {
	if resourceID == "" || name == "" {
		return SignedToken{}, fmt.Errorf("resource id and name required")
	}
	if len(s.secret) == 0 {
		return SignedToken{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := s.now().Add(s.ttl).Truncate(time.Second)
	exp := strconv.FormatInt(expiresAt.Unix(), 10)
	encodedName := base64.RawURLEncoding.EncodeToString([]byte(name))
	value := strings.Join([]string{resourceID, exp, encodedName, s.sign(resourceID, exp, encodedName)}, ".")
	return SignedToken{Value: value, ExpiresAt: expiresAt}, nil
}

// Parse validates the signature and expiry of token.
func (s *SignedURLSigner) Parse(token string) (TokenClaims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return TokenClaims{}, ErrTokenInvalid
	}
	resourceID, exp, encodedName, signature := parts[0], parts[1], parts[2], parts[3]

	if !hmac.Equal([]byte(s.sign(resourceID, exp, encodedName)), []byte(signature)) {
		return TokenClaims{}, ErrTokenInvalid
	}
	expUnix, err := strconv.ParseInt(exp, 10, 64)
	if err != nil {
		return TokenClaims{}, ErrTokenInvalid
	}
	rawName, err := base64.RawURLEncoding.DecodeString(encodedName)
	if err != nil {
		return TokenClaims{}, ErrTokenInvalid
	}
	expiresAt := time.Unix(expUnix, 0)
	if s.now().After(expiresAt) {
		return TokenClaims{}, ErrTokenExpired
	}
	return TokenClaims{ResourceID: resourceID, Name: string(rawName), ExpiresAt: expiresAt}, nil
}

func (s *SignedURLSigner) sign(resourceID, exp, encodedName string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(resourceID + "|" + exp + "|" + encodedName))
	return hex.EncodeToString(mac.Sum(nil))
}
