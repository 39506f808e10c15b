package storage

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"
)

var ErrInvalidURLToken = errors.New("storage: invalid or expired url token")

// URLAudience marks link tokens so they never pass as API tokens.
const URLAudience = "clouddrive-download"

// URLSigner issues expiring download links for providers that have no
// native presigning. The token is an HS256 JWT whose subject is the key,
// signed with a key derived from the shared secret.
type URLSigner struct {
	secret  []byte
	baseURL string
	now     func() time.Time
}

func NewURLSigner(secret, baseURL string) *URLSigner {
	return &URLSigner{
		secret:  deriveKey(secret),
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

// PublicURL joins the base URL and the escaped key.
func (s *URLSigner) PublicURL(key string) string {
	return s.baseURL + "/" + escapeKey(key)
}

func (s *URLSigner) Sign(key string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   key,
		Audience:  jwt.ClaimStrings{URLAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign url: %w", err)
	}

	return s.PublicURL(key) + "?token=" + url.QueryEscape(token), nil
}

func (s *URLSigner) Verify(key, token string) error {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithAudience(URLAudience))
	if err != nil || !parsed.Valid {
		return ErrInvalidURLToken
	}
	if claims.Subject != key {
		return ErrInvalidURLToken
	}
	return nil
}

func deriveKey(secret string) []byte {
	key := make([]byte, sha256.Size)
	reader := hkdf.New(sha256.New, []byte(secret), nil, []byte(URLAudience))
	if _, err := io.ReadFull(reader, key); err != nil {
		panic(fmt.Sprintf("storage: derive url key: %v", err))
	}
	return key
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}

// cleanKey rejects keys that are empty, absolute or climb out of the root.
func cleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
	}
	return key, nil
}
