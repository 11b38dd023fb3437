package user

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeUserRepo struct {
	byEmail map[string]*User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: map[string]*User{}}
}

func (f *fakeUserRepo) Create(_ context.Context, u *User) error {
	if _, exists := f.byEmail[u.Email]; exists {
		return ErrEmailAlreadyExists
	}
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) UpdateLastLogin(_ context.Context, _ uuid.UUID, _ time.Time) error {
	return nil
}

func newTestUserService() (*Service, *fakeUserRepo) {
	repo := newFakeUserRepo()
	jwt := NewJWTManager(JWTConfig{Secret: "test-secret"})
	return NewService(repo, jwt, zap.NewNop()), repo
}

func TestService_Register(t *testing.T) {
	svc, repo := newTestUserService()

	auth, err := svc.Register(context.Background(), &RegisterRequest{
		Name:     "Asha",
		Email:    "Asha@Example.COM",
		Password: "hunter22",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, auth.Token)
	assert.Equal(t, "asha@example.com", auth.User.Email)

	// Stored as lowercase, hashed, active immediately.
	stored := repo.byEmail["asha@example.com"]
	require.NotNil(t, stored)
	assert.True(t, stored.Active)
	assert.NotEqual(t, "hunter22", stored.PasswordHash)
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	svc, _ := newTestUserService()

	req := &RegisterRequest{Name: "Asha", Email: "asha@example.com", Password: "hunter22"}
	_, err := svc.Register(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestService_Login(t *testing.T) {
	svc, repo := newTestUserService()
	_, err := svc.Register(context.Background(), &RegisterRequest{Name: "Asha", Email: "asha@example.com", Password: "hunter22"})
	require.NoError(t, err)

	t.Run("correct password", func(t *testing.T) {
		auth, err := svc.Login(context.Background(), &LoginRequest{Email: "asha@example.com", Password: "hunter22"})
		require.NoError(t, err)
		assert.NotEmpty(t, auth.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(context.Background(), &LoginRequest{Email: "asha@example.com", Password: "wrong"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(context.Background(), &LoginRequest{Email: "nobody@example.com", Password: "hunter22"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("inactive account", func(t *testing.T) {
		repo.byEmail["asha@example.com"].Active = false
		defer func() { repo.byEmail["asha@example.com"].Active = true }()

		_, err := svc.Login(context.Background(), &LoginRequest{Email: "asha@example.com", Password: "hunter22"})
		assert.ErrorIs(t, err, ErrUserInactive)
	})
}

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager(JWTConfig{Secret: "test-secret", AccessTokenExpiry: time.Hour})
	u := &User{ID: uuid.New(), Email: "asha@example.com"}

	token, expiresAt, err := m.GenerateAccessToken(u)
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, u.Email, claims.Email)

	t.Run("wrong secret rejected", func(t *testing.T) {
		other := NewJWTManager(JWTConfig{Secret: "different"})
		_, err := other.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage rejected", func(t *testing.T) {
		_, err := m.ValidateAccessToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
