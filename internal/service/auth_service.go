package service

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/TahjibNil75/trackIT/internal/auth"
	"github.com/TahjibNil75/trackIT/internal/config"
	"github.com/TahjibNil75/trackIT/internal/domain"
	"github.com/TahjibNil75/trackIT/internal/repository"
	apperrors "github.com/TahjibNil75/trackIT/pkg/util/errorutil"
)

// ErrInvalidCredentials is returned for a wrong password.
var ErrInvalidCredentials = apperrors.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password.", http.StatusUnauthorized, nil)

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// SignupInput is the registration payload.
type SignupInput struct {
	Username        string
	Email           string
	FullName        *string
	Password        string
	ConfirmPassword string
}

// AuthResult carries the account and its tokens. RefreshToken is empty on refresh.
type AuthResult struct {
	User         *domain.User
	AccessToken  auth.IssuedToken
	RefreshToken auth.IssuedToken
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, users repository.UserRepository) *AuthService {
	return &AuthService{
		users:      users,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes, cfg.RefreshTokenTTLMinutes),
		bcryptCost: cfg.BcryptCost,
	}
}

// Signup registers a regular user account.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*domain.User, error) {
	return s.CreateAccount(ctx, input, domain.RoleUser)
}

// CreateAccount registers an account with the given role. Public signup always
// passes RoleUser; the admin CLI uses it to bootstrap administrators.
func (s *AuthService) CreateAccount(ctx context.Context, input SignupInput, role domain.Role) (*domain.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	errs := fieldErrors{}
	if runeLen(input.Username) < 2 {
		errs.add("username", "must be at least 2 characters")
	}
	if _, err := mail.ParseAddress(input.Email); err != nil || !strings.Contains(input.Email, "@") {
		errs.add("email", "must be a valid email address")
	}
	validatePassword(errs, "password", input.Password)
	if input.Password != input.ConfirmPassword {
		errs.add("confirm_password", "passwords do not match")
	}
	if !role.Valid() {
		errs.add("role", "unknown role")
	}
	if err := errs.err("invalid signup payload"); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		return nil, apperrors.NewConflict("Email already registered.", map[string]any{"email": input.Email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	user := &domain.User{
		Username:     input.Username,
		Email:        input.Email,
		FullName:     input.FullName,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// Login authenticates by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"email": email})
		}
		return nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, apperrors.NewForbidden("account is deactivated")
	}

	access, err := s.tokenMgr.GenerateToken(user, domain.TokenKindAccess)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	refresh, err := s.tokenMgr.GenerateToken(user, domain.TokenKindRefresh)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &AuthResult{User: user, AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh exchanges a refresh token for a new access token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.tokenMgr.ParseToken(refreshToken, domain.TokenKindRefresh)
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid or expired refresh token")
	}
	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("user not found")
		}
		return nil, apperrors.MapError(err)
	}
	if !user.IsActive {
		return nil, apperrors.NewForbidden("account is deactivated")
	}

	access, err := s.tokenMgr.GenerateToken(user, domain.TokenKindAccess)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &AuthResult{User: user, AccessToken: access}, nil
}

// ChangePassword verifies the current password before storing the new hash.
func (s *AuthService) ChangePassword(ctx context.Context, actor *domain.User, currentPassword, newPassword, confirmPassword string) error {
	errs := fieldErrors{}
	validatePassword(errs, "new_password", newPassword)
	if newPassword != confirmPassword {
		errs.add("confirm_password", "passwords do not match")
	}
	if err := errs.err("invalid password change"); err != nil {
		return err
	}

	user, err := loadUser(ctx, s.users, actor.ID)
	if err != nil {
		return err
	}
	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	user.PasswordHash = hash
	return apperrors.MapError(s.users.Update(ctx, user))
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func validatePassword(errs fieldErrors, field, password string) {
	if n := runeLen(password); n < 8 || n > 128 {
		errs.add(field, "must be between 8 and 128 characters")
	}
}
