package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Service provides user account operations.
type Service struct {
	repo   Repository
	jwt    *JWTManager
	logger *zap.Logger
}

// NewService creates a new user service.
func NewService(repo Repository, jwt *JWTManager, logger *zap.Logger) *Service {
	return &Service{repo: repo, jwt: jwt, logger: logger}
}

// Register creates a new active account and issues a token. Duplicate emails
// surface as ErrEmailAlreadyExists so clients can fall back to login.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := &User{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:        strings.TrimSpace(req.Phone),
		PasswordHash: string(hash),
		Active:       true,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	s.logger.Info("user registered", zap.String("user_id", u.ID.String()))
	return s.issueToken(u)
}

// Login authenticates an existing account.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	u, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !u.Active {
		return nil, ErrUserInactive
	}

	if err := s.repo.UpdateLastLogin(ctx, u.ID, time.Now()); err != nil {
		s.logger.Warn("failed to update last login", zap.String("user_id", u.ID.String()), zap.Error(err))
	}

	return s.issueToken(u)
}

// GetProfile returns the public profile for a user id.
func (s *Service) GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return newProfile(u), nil
}

func (s *Service) issueToken(u *User) (*AuthResponse, error) {
	token, expiresAt, err := s.jwt.GenerateAccessToken(u)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{Token: token, ExpiresAt: expiresAt, User: newProfile(u)}, nil
}
