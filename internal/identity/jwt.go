package identity

import (
	"context"
	"fmt"

	"clouddrive/internal/models"
	"clouddrive/internal/utils"
)

// JWTVerifier accepts the access tokens minted by the built-in auth service.
type JWTVerifier struct {
	secret string
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: secret}
}

func (v *JWTVerifier) Verify(ctx context.Context, token string) (*models.Identity, error) {
	claims, err := utils.ValidateToken(token, v.secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrInvalidToken, err)
	}
	if claims.Kind != utils.TokenKindAccess {
		return nil, fmt.Errorf("%w: not an access token", utils.ErrInvalidToken)
	}

	return &models.Identity{
		UserID:   claims.UserID,
		Email:    claims.Email,
		Provider: models.AuthProviderLocal,
	}, nil
}
