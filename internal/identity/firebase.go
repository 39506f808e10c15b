package identity

import (
	"context"
	"fmt"

	"clouddrive/internal/models"
	"clouddrive/internal/utils"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

type idTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
	VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseVerifier accepts ID tokens issued by Firebase Authentication.
type FirebaseVerifier struct {
	client       idTokenVerifier
	checkRevoked bool
}

type FirebaseOptions struct {
	ProjectID       string
	CredentialsFile string
	CheckRevoked    bool
}

func NewFirebaseVerifier(ctx context.Context, opts FirebaseOptions) (*FirebaseVerifier, error) {
	var clientOpts []option.ClientOption
	if opts.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(opts.CredentialsFile))
	}

	var config *firebase.Config
	if opts.ProjectID != "" {
		config = &firebase.Config{ProjectID: opts.ProjectID}
	}

	app, err := firebase.NewApp(ctx, config, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase auth: %w", err)
	}

	return &FirebaseVerifier{client: client, checkRevoked: opts.CheckRevoked}, nil
}

func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (*models.Identity, error) {
	var (
		decoded *auth.Token
		err     error
	)
	if v.checkRevoked {
		decoded, err = v.client.VerifyIDTokenAndCheckRevoked(ctx, token)
	} else {
		decoded, err = v.client.VerifyIDToken(ctx, token)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrInvalidToken, err)
	}

	email, _ := decoded.Claims["email"].(string)
	return &models.Identity{
		UserID:   decoded.UID,
		Email:    email,
		Provider: models.AuthProviderFirebase,
	}, nil
}
