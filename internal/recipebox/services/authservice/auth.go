package authservice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Leopold1975/recipebox/internal/pkg/config"
	"github.com/Leopold1975/recipebox/internal/pkg/jwtauth"
	"github.com/Leopold1975/recipebox/internal/recipebox/domain/models"
	"github.com/Leopold1975/recipebox/internal/recipebox/repository/userrepo"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 5

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrShortPassword      = errors.New("password is too short")
	ErrInvalidToken       = errors.New("invalid token")
)

type Repository interface {
	CreateUser(context.Context, models.User) (models.User, error)
	GetUserByEmail(context.Context, string) (models.User, error)
	UpdateUser(context.Context, models.User) (models.User, error)
	SaveToken(context.Context, int64, string) error
	GetUserByToken(context.Context, string) (models.User, error)
}

type AuthService struct {
	userRepo Repository
	cfg      config.Auth
}

func New(userRepo Repository, cfg config.Auth) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		cfg:      cfg,
	}
}

func (as *AuthService) Register(ctx context.Context, req RegisterRequest) (models.User, error) {
	if len(req.Password) < minPasswordLen {
		return models.User{}, ErrShortPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("generate from password error: %w", err)
	}

	now := time.Now()

	u := models.User{ //nolint:exhaustruct
		Email:        NormalizeEmail(req.Email),
		PasswordHash: string(hash),
		Name:         req.Name,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	u, err = as.userRepo.CreateUser(ctx, u)
	if err != nil {
		if errors.Is(err, userrepo.ErrAlreadyExists) {
			return models.User{}, userrepo.ErrAlreadyExists
		}

		return models.User{}, fmt.Errorf("create user error: %w", err)
	}

	return u, nil
}

// Login checks the credentials and issues a fresh token,
// invalidating any previously issued one.
func (as *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", ErrInvalidCredentials
	}

	u, err := as.userRepo.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return "", ErrInvalidCredentials
		}

		return "", fmt.Errorf("get user error: %w", err)
	}

	if !u.IsActive {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := jwtauth.NewToken(u, as.cfg.TTL, as.cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("can't get token error: %w", err)
	}

	if err := as.userRepo.SaveToken(ctx, u.ID, token); err != nil {
		return "", fmt.Errorf("save token error: %w", err)
	}

	return token, nil
}

// Resolve maps a presented token back to its user. The token must match the
// stored one byte for byte and still carry a valid signature.
func (as *AuthService) Resolve(ctx context.Context, token string) (models.User, error) {
	if token == "" {
		return models.User{}, ErrInvalidToken
	}

	u, err := as.userRepo.GetUserByToken(ctx, token)
	if err != nil {
		if errors.Is(err, userrepo.ErrTokenNotFound) {
			return models.User{}, ErrInvalidToken
		}

		return models.User{}, fmt.Errorf("get user by token error: %w", err)
	}

	if !u.IsActive {
		return models.User{}, ErrInvalidToken
	}

	if _, err := jwtauth.ValidateToken(token, as.cfg.Secret); err != nil {
		return models.User{}, ErrInvalidToken
	}

	return u, nil
}

func (as *AuthService) UpdateProfile(ctx context.Context, u models.User,
	req UpdateProfileRequest,
) (models.User, error) {
	if req.Email != nil {
		u.Email = NormalizeEmail(*req.Email)
	}

	if req.Name != nil {
		u.Name = *req.Name
	}

	if req.Password != nil {
		if len(*req.Password) < minPasswordLen {
			return models.User{}, ErrShortPassword
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return models.User{}, fmt.Errorf("generate from password error: %w", err)
		}

		u.PasswordHash = string(hash)
	}

	u.UpdatedAt = time.Now()

	u, err := as.userRepo.UpdateUser(ctx, u)
	if err != nil {
		if errors.Is(err, userrepo.ErrAlreadyExists) {
			return models.User{}, userrepo.ErrAlreadyExists
		}

		return models.User{}, fmt.Errorf("update user error: %w", err)
	}

	return u, nil
}

// NormalizeEmail lowercases and trims the login identifier.
// Lookups are always done on the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
