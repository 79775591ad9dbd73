package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"realty_backend/internal/auth"
	"realty_backend/internal/config"
	"realty_backend/internal/logger"
	"realty_backend/internal/models"
	"realty_backend/internal/repositories"
	"realty_backend/internal/services/dto"
	"realty_backend/pkg/apperrors"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	refreshTokenTTL = 30 * 24 * time.Hour
	googleUserInfo  = "https://www.googleapis.com/oauth2/v2/userinfo"
)

var errInvalidCredentials = apperrors.New(
	apperrors.CodeInvalidCredentials, "auth", "Invalid email or password", http.StatusUnauthorized)

// AuthService owns credential auth, token lifecycle and the Google OAuth
// flow.
type AuthService struct {
	userRepo  repositories.UserRepository
	tokenRepo repositories.RefreshTokenRepository
	oauthCfg  *oauth2.Config
}

func NewAuthService(userRepo repositories.UserRepository, tokenRepo repositories.RefreshTokenRepository) *AuthService {
	cfg := config.GetConfig()

	var oauthCfg *oauth2.Config
	if cfg.OAuth.GoogleClientID != "" {
		oauthCfg = &oauth2.Config{
			ClientID:     cfg.OAuth.GoogleClientID,
			ClientSecret: cfg.OAuth.GoogleClientSecret,
			RedirectURL:  cfg.OAuth.RedirectBaseURL + "/api/v1/auth/google/callback",
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
	}

	return &AuthService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		oauthCfg:  oauthCfg,
	}
}

// Register creates a credential account and signs the user in.
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
		Phone:        req.Phone,
		Role:         models.UserRoleUser,
	}
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, apperrors.ErrAlreadyExists(err)
		}
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "user registered", "user_id", user.ID)
	return s.issueTokens(user)
}

// Login verifies credentials. OAuth-only accounts have no password hash and
// cannot log in with one; the error stays indistinguishable from a wrong
// password.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, apperrors.InternalError(err)
	}

	if user.PasswordHash == "" || !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, errInvalidCredentials
	}
	return s.issueTokens(user)
}

// Refresh rotates a refresh token into a new token pair. The presented
// token is consumed either way.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*dto.AuthResponse, error) {
	stored, err := s.tokenRepo.Find(refreshToken)
	if err != nil {
		if errors.Is(err, repositories.ErrRefreshTokenNotFound) {
			return nil, apperrors.NewUnauthorizedError("Invalid refresh token")
		}
		return nil, apperrors.InternalError(err)
	}

	if err := s.tokenRepo.Delete(refreshToken); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if time.Now().After(stored.ExpiresAt) {
		return nil, apperrors.NewUnauthorizedError("Refresh token expired")
	}

	user, err := s.userRepo.FindByID(stored.UserID)
	if err != nil {
		return nil, apperrors.NewUnauthorizedError("Account no longer exists")
	}
	return s.issueTokens(user)
}

// Logout revokes every refresh token the user holds.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	if err := s.tokenRepo.DeleteByUser(userID); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

// GoogleAuthURL starts the OAuth flow. The state nonce is validated by the
// handler via cookie.
func (s *AuthService) GoogleAuthURL(state string) (string, error) {
	if s.oauthCfg == nil {
		return "", apperrors.ErrInvalidOperation("auth", "Google sign-in is not configured")
	}
	return s.oauthCfg.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

type googleProfile struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// GoogleCallback exchanges the code, fetches the profile and signs the
// user in, creating the account on first sight. An existing credential
// account with the same email is linked, not duplicated.
func (s *AuthService) GoogleCallback(ctx context.Context, code string) (*dto.AuthResponse, error) {
	if s.oauthCfg == nil {
		return nil, apperrors.ErrInvalidOperation("auth", "Google sign-in is not configured")
	}

	token, err := s.oauthCfg.Exchange(ctx, code)
	if err != nil {
		return nil, apperrors.UpstreamError(err, "oauth")
	}

	profile, err := s.fetchGoogleProfile(ctx, token)
	if err != nil {
		return nil, apperrors.UpstreamError(err, "oauth")
	}
	if profile.Email == "" {
		return nil, apperrors.NewUnauthorizedError("Google account has no email")
	}

	user, err := s.userRepo.FindByEmail(profile.Email)
	switch {
	case err == nil:
		if user.OAuthProvider == "" {
			user.OAuthProvider = "google"
			if user.Avatar == "" {
				user.Avatar = profile.Picture
			}
			if err := s.userRepo.Update(user); err != nil {
				return nil, apperrors.InternalError(err)
			}
		}
	case errors.Is(err, repositories.ErrUserNotFound):
		user = &models.User{
			Email:         profile.Email,
			Name:          profile.Name,
			Avatar:        profile.Picture,
			Role:          models.UserRoleUser,
			OAuthProvider: "google",
		}
		if err := s.userRepo.Create(user); err != nil {
			return nil, apperrors.InternalError(err)
		}
		logger.CtxInfo(ctx, "oauth user created", "user_id", user.ID)
	default:
		return nil, apperrors.InternalError(err)
	}

	return s.issueTokens(user)
}

func (s *AuthService) fetchGoogleProfile(ctx context.Context, token *oauth2.Token) (*googleProfile, error) {
	resp, err := s.oauthCfg.Client(ctx, token).Get(googleUserInfo)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("userinfo status %d: %s", resp.StatusCode, body)
	}

	var profile googleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Promote elevates the caller to ADMIN when the bootstrap secret matches.
// This is the break-glass path for standing up a fresh deployment; it is
// disabled when no secret is configured.
func (s *AuthService) Promote(ctx context.Context, userID, secret string) (*dto.UserResponse, error) {
	configured := config.GetConfig().Admin.BootstrapSecret
	if configured == "" || secret != configured {
		return nil, apperrors.NewForbiddenError("Invalid bootstrap secret")
	}

	if err := s.userRepo.UpdateRole(userID, models.UserRoleAdmin); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	logger.CtxInfo(ctx, "user promoted to admin", "user_id", userID)

	resp := dto.NewUserResponse(user)
	return &resp, nil
}

// SeedFirstAdmin creates the configured admin account on startup when no
// admin exists yet. Safe to call on every boot.
func (s *AuthService) SeedFirstAdmin(ctx context.Context) error {
	cfg := config.GetConfig()
	if cfg.Admin.Email == "" || cfg.Admin.Password == "" {
		return nil
	}

	count, err := s.userRepo.CountByRole(models.UserRoleAdmin)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword(cfg.Admin.Password)
	if err != nil {
		return err
	}
	admin := &models.User{
		Email:        cfg.Admin.Email,
		PasswordHash: hash,
		Name:         "Administrator",
		Role:         models.UserRoleAdmin,
	}
	if err := s.userRepo.Create(admin); err != nil {
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil
		}
		return err
	}
	logger.CtxInfo(ctx, "seeded first admin", "email", cfg.Admin.Email)
	return nil
}

func (s *AuthService) issueTokens(user *models.User) (*dto.AuthResponse, error) {
	access, err := auth.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	refresh, err := randomToken()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	record := &models.RefreshToken{
		UserID:    user.ID,
		Token:     refresh,
		ExpiresAt: time.Now().Add(refreshTokenTTL),
	}
	if err := s.tokenRepo.Create(record); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.AuthResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         dto.NewUserResponse(user),
	}, nil
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
