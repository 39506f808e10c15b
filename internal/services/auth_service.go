package services

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"clouddrive/internal/models"
	"clouddrive/internal/repositories/interfaces"
	"clouddrive/internal/utils"
	"clouddrive/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// AuthService is the built-in identity provider used when no external one
// is configured.
type AuthService interface {
	Register(ctx context.Context, input *RegisterInput) (*models.AuthResult, error)
	Login(ctx context.Context, input *LoginInput) (*models.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*models.Tokens, error)
	Me(ctx context.Context, identity *models.Identity) (*Account, error)
}

type RegisterInput struct {
	Email    string
	Password string
	FullName string
}

type LoginInput struct {
	Email    string
	Password string
}

type Account struct {
	models.Identity
	Profile *models.Profile `json:"profile"`
}

type AuthServiceConfig struct {
	JWTSecret         string
	AccessTokenTTL    time.Duration
	RefreshTokenTTL   time.Duration
	PasswordMinLength int
	BcryptCost        int
}

type authService struct {
	userRepo interfaces.UserRepository
	quota    StorageService
	config   AuthServiceConfig
	logger   *logger.Logger
}

func NewAuthService(
	userRepo interfaces.UserRepository,
	quota StorageService,
	config AuthServiceConfig,
	log *logger.Logger,
) AuthService {
	if config.PasswordMinLength <= 0 {
		config.PasswordMinLength = utils.PasswordMinLength
	}
	if config.BcryptCost == 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}
	return &authService{
		userRepo: userRepo,
		quota:    quota,
		config:   config,
		logger:   log.WithField("service", "auth"),
	}
}

func (s *authService) Register(ctx context.Context, input *RegisterInput) (*models.AuthResult, error) {
	email := utils.NormalizeEmail(input.Email)
	if !utils.IsValidEmail(email) {
		return nil, fmt.Errorf("%w: invalid email address", utils.ErrInvalidInput)
	}
	length := utf8.RuneCountInString(input.Password)
	if length < s.config.PasswordMinLength || length > utils.PasswordMaxLength {
		return nil, fmt.Errorf("%w: password must be between %d and %d characters",
			utils.ErrInvalidInput, s.config.PasswordMinLength, utils.PasswordMaxLength)
	}

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: email already registered", utils.ErrConflict)
	} else if !errors.Is(err, utils.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		FullName:     input.FullName,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	profile, err := s.quota.EnsureProfile(ctx, user.ID.Hex(), user.FullName)
	if err != nil {
		return nil, err
	}

	tokens, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	s.logger.LogUserAction(user.ID.Hex(), "register", map[string]interface{}{"email": utils.MaskEmail(email)})
	return &models.AuthResult{User: user, Profile: profile, Tokens: tokens}, nil
}

func (s *authService) Login(ctx context.Context, input *LoginInput) (*models.AuthResult, error) {
	email := utils.NormalizeEmail(input.Email)

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			s.logger.LogSecurityEvent("login_failed", "low", map[string]interface{}{"email": utils.MaskEmail(email)})
			return nil, utils.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		s.logger.LogSecurityEvent("login_failed", "medium", map[string]interface{}{"user_id": user.ID.Hex()})
		return nil, utils.ErrInvalidCredentials
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.WithUserID(user.ID.Hex()).WithError(err).Warn("Failed to record last login")
	}

	profile, err := s.quota.EnsureProfile(ctx, user.ID.Hex(), user.FullName)
	if err != nil {
		return nil, err
	}

	tokens, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	s.logger.LogUserAction(user.ID.Hex(), "login", nil)
	return &models.AuthResult{User: user, Profile: profile, Tokens: tokens}, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*models.Tokens, error) {
	claims, err := utils.ValidateToken(refreshToken, s.config.JWTSecret)
	if err != nil || claims.Kind != utils.TokenKindRefresh {
		return nil, utils.ErrInvalidToken
	}

	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, utils.ErrInvalidToken
	}
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.ErrInvalidToken
		}
		return nil, err
	}

	return s.issue(user)
}

func (s *authService) Me(ctx context.Context, identity *models.Identity) (*Account, error) {
	profile, err := s.quota.EnsureProfile(ctx, identity.UserID, "")
	if err != nil {
		return nil, err
	}
	return &Account{Identity: *identity, Profile: profile}, nil
}

func (s *authService) issue(user *models.User) (*models.Tokens, error) {
	pair, err := utils.GenerateTokenPair(user.ID.Hex(), user.Email, s.config.JWTSecret,
		s.config.AccessTokenTTL, s.config.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}
	return &models.Tokens{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
		TokenType:    pair.TokenType,
	}, nil
}
