package identity

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"clouddrive/internal/models"
	"clouddrive/internal/utils"
	"clouddrive/pkg/storage"

	"firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt/v5"
)

func TestJWTVerifier_AcceptsAccessToken(t *testing.T) {
	pair, err := utils.GenerateTokenPair("user-1", "a@example.com", "secret", time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("GenerateTokenPair failed: %v", err)
	}

	id, err := NewJWTVerifier("secret").Verify(context.Background(), pair.AccessToken)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if id.UserID != "user-1" || id.Email != "a@example.com" || id.Provider != models.AuthProviderLocal {
		t.Errorf("Unexpected identity: %+v", id)
	}
}

func TestJWTVerifier_Rejects(t *testing.T) {
	pair, _ := utils.GenerateTokenPair("user-1", "a@example.com", "secret", time.Minute, time.Hour)
	v := NewJWTVerifier("secret")

	cases := map[string]string{
		"refresh token": pair.RefreshToken,
		"garbage":       "not-a-token",
	}
	for name, token := range cases {
		if _, err := v.Verify(context.Background(), token); !errors.Is(err, utils.ErrInvalidToken) {
			t.Errorf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}

	if _, err := NewJWTVerifier("other").Verify(context.Background(), pair.AccessToken); !errors.Is(err, utils.ErrInvalidToken) {
		t.Errorf("Expected wrong secret to be rejected, got %v", err)
	}
}

func TestJWTVerifier_RejectsTokensWithoutAccessKind(t *testing.T) {
	v := NewJWTVerifier("secret")

	link, err := storage.NewURLSigner("secret", "http://localhost/uploads").Sign("someone/123-a.txt", time.Minute)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	parsed, _ := url.Parse(link)
	if _, err := v.Verify(context.Background(), parsed.Query().Get("token")); !errors.Is(err, utils.ErrInvalidToken) {
		t.Errorf("Expected download link token to be rejected, got %v", err)
	}

	bare, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &utils.JWTClaims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}
	if _, err := v.Verify(context.Background(), bare); !errors.Is(err, utils.ErrInvalidToken) {
		t.Errorf("Expected token without kind to be rejected, got %v", err)
	}
}

type fakeIDTokenVerifier struct {
	token        *auth.Token
	err          error
	revokedCalls int
}

func (f *fakeIDTokenVerifier) VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	return f.token, f.err
}

func (f *fakeIDTokenVerifier) VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*auth.Token, error) {
	f.revokedCalls++
	return f.token, f.err
}

func TestFirebaseVerifier_MapsClaims(t *testing.T) {
	fake := &fakeIDTokenVerifier{token: &auth.Token{
		UID:    "firebase-uid",
		Claims: map[string]interface{}{"email": "b@example.com"},
	}}
	v := &FirebaseVerifier{client: fake, checkRevoked: true}

	id, err := v.Verify(context.Background(), "id-token")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if id.UserID != "firebase-uid" || id.Email != "b@example.com" || id.Provider != models.AuthProviderFirebase {
		t.Errorf("Unexpected identity: %+v", id)
	}
	if fake.revokedCalls != 1 {
		t.Errorf("Expected revocation check, got %d calls", fake.revokedCalls)
	}
}

func TestFirebaseVerifier_Error(t *testing.T) {
	v := &FirebaseVerifier{client: &fakeIDTokenVerifier{err: errors.New("expired")}}

	if _, err := v.Verify(context.Background(), "id-token"); !errors.Is(err, utils.ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}
}
