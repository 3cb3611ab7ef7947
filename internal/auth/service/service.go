// Package service implements credential auth for console admins: sign-in
// with JWT access tokens, opaque refresh tokens, and password reset.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"admin_console_backend/internal/auth/password"
	"admin_console_backend/internal/auth/repository"
	"admin_console_backend/internal/auth/token"
	"admin_console_backend/internal/identity/domain"
	"admin_console_backend/platform/config"
	"admin_console_backend/platform/logger"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account inactive")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
)

const accessTokenType = "access"

// UserStore is the slice of the identity repository the auth service needs.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (domain.AdminUser, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.AdminUser, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	TouchLastLogin(ctx context.Context, id uuid.UUID) error
}

// ResetEmailSender delivers password reset links.
type ResetEmailSender interface {
	SendPasswordResetEmail(ctx context.Context, to, resetURL string) error
}

// SignInResult carries the issued tokens and whether the account must
// change its password before doing anything else.
type SignInResult struct {
	AccessToken        string
	RefreshToken       string
	MustChangePassword bool
}

type Service struct {
	users  UserStore
	tokens *repository.Repository
	cfg    config.AuthServiceConfig
	mail   ResetEmailSender
	log    *logger.Logger
}

// New creates a new auth service. mail may be nil when email is disabled.
func New(users UserStore, tokens *repository.Repository, cfg config.AuthServiceConfig, mail ResetEmailSender, log *logger.Logger) *Service {
	return &Service{users: users, tokens: tokens, cfg: cfg, mail: mail, log: log}
}

// SignIn verifies credentials and issues an access and refresh token pair.
func (s *Service) SignIn(ctx context.Context, email, plainPassword string) (SignInResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return SignInResult{}, ErrInvalidCredentials
	}
	if err := password.Compare(user.PasswordHash, plainPassword); err != nil {
		s.log.AuthEvent("sign_in", user.Email, false, "bad credentials")
		return SignInResult{}, ErrInvalidCredentials
	}
	if user.Status != domain.StatusActive {
		return SignInResult{}, ErrAccountInactive
	}

	access, refresh, err := s.issueTokens(ctx, user)
	if err != nil {
		return SignInResult{}, err
	}
	if err := s.users.TouchLastLogin(ctx, user.ID); err != nil {
		s.log.Warn("touch last login failed", "user_id", user.ID, "error", err)
	}
	s.log.AuthEvent("sign_in", user.Email, true, "")

	return SignInResult{
		AccessToken:        access,
		RefreshToken:       refresh,
		MustChangePassword: user.MustChangePassword,
	}, nil
}

// Refresh rotates a refresh token and issues a new token pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (SignInResult, error) {
	hash := token.HashSHA256(refreshToken)
	userID, expiresAt, err := s.tokens.GetRefreshToken(ctx, hash)
	if err != nil {
		return SignInResult{}, ErrTokenInvalid
	}
	if time.Now().After(expiresAt) {
		_ = s.tokens.RevokeRefreshToken(ctx, hash)
		return SignInResult{}, ErrTokenExpired
	}
	_ = s.tokens.RevokeRefreshToken(ctx, hash)

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return SignInResult{}, ErrTokenInvalid
	}
	if user.Status != domain.StatusActive {
		return SignInResult{}, ErrAccountInactive
	}

	access, refresh, err := s.issueTokens(ctx, user)
	if err != nil {
		return SignInResult{}, err
	}
	return SignInResult{
		AccessToken:        access,
		RefreshToken:       refresh,
		MustChangePassword: user.MustChangePassword,
	}, nil
}

// SignOut revokes a refresh token.
func (s *Service) SignOut(ctx context.Context, refreshToken string) error {
	return s.tokens.RevokeRefreshToken(ctx, token.HashSHA256(refreshToken))
}

// ChangePassword sets a new password after verifying the current one, and
// revokes all refresh tokens.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := password.Compare(user.PasswordHash, current); err != nil {
		return ErrInvalidCredentials
	}
	hash, err := password.Hash(next)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}
	_ = s.tokens.RevokeAllRefreshTokens(ctx, userID)
	s.log.AuthEvent("password_change", user.Email, true, "")
	return nil
}

// ForgotPassword emails a reset link. Unknown emails are silently accepted
// so the endpoint does not leak which addresses exist.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil
	}

	resetToken, err := token.GenerateRandomToken(32)
	if err != nil {
		return err
	}
	hash := token.HashSHA256(resetToken)
	expiresAt := time.Now().Add(s.cfg.GetResetTokenTTL())
	if err := s.tokens.CreateUserToken(ctx, user.ID, hash, repository.TokenTypePasswordReset, expiresAt); err != nil {
		return err
	}

	if s.mail == nil {
		s.log.Warn("password reset requested but email is disabled", "user_id", user.ID)
		return nil
	}
	resetURL := s.buildURL("/reset-password", resetToken)
	return s.mail.SendPasswordResetEmail(ctx, user.Email, resetURL)
}

// ResetPassword consumes a reset token and sets the new password.
func (s *Service) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	hash := token.HashSHA256(rawToken)
	userID, expiresAt, err := s.tokens.GetUserToken(ctx, hash, repository.TokenTypePasswordReset)
	if err != nil {
		return ErrTokenInvalid
	}
	if time.Now().After(expiresAt) {
		return ErrTokenExpired
	}

	passwordHash, err := password.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, userID, passwordHash); err != nil {
		return err
	}
	_ = s.tokens.UseUserToken(ctx, hash, repository.TokenTypePasswordReset)
	_ = s.tokens.RevokeAllRefreshTokens(ctx, userID)
	s.log.Info("password reset completed", "user_id", userID)
	return nil
}

func (s *Service) issueTokens(ctx context.Context, user domain.AdminUser) (string, string, error) {
	accessToken, err := s.signJWT(user.ID, user.Roles, s.cfg.GetAccessTokenTTL())
	if err != nil {
		return "", "", err
	}

	refreshToken, err := token.GenerateRandomToken(48)
	if err != nil {
		return "", "", err
	}
	hash := token.HashSHA256(refreshToken)
	expiresAt := time.Now().Add(s.cfg.GetRefreshTokenTTL())
	if err := s.tokens.CreateRefreshToken(ctx, user.ID, hash, expiresAt); err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func (s *Service) signJWT(userID uuid.UUID, roles []string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":   userID.String(),
		"type":  accessTokenType,
		"roles": roles,
		"exp":   time.Now().Add(ttl).Unix(),
		"iat":   time.Now().Unix(),
	}
	tokenObj := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tokenObj.SignedString([]byte(s.cfg.GetJWTAccessSecret()))
}

func (s *Service) buildURL(path, tokenValue string) string {
	base := strings.TrimRight(s.cfg.GetAppBaseURL(), "/")
	return base + path + "?token=" + tokenValue
}
