package user_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go-gin-shop-api/internal/core/auth"
	"go-gin-shop-api/internal/domain"
	"go-gin-shop-api/internal/feature/user"
	"go-gin-shop-api/pkg/utils"
)

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) FindCredentialsByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type failingIssuer struct{}

func (failingIssuer) Issue(*domain.User) (string, error) { return "", errors.New("no key") }

var jwter = &auth.JWTer{Secret: []byte("test-secret")}

func newService(repo *MockUserRepo) *user.Service {
	return user.NewService(repo, jwter, zap.NewNop())
}

func TestSignUp_Success(t *testing.T) {
	repo := new(MockUserRepo)
	repo.On("FindByEmail", mock.Anything, "a@x.com").Return(nil, domain.ErrNotFound).Once()
	repo.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Name == "A" && u.Email == "a@x.com" && utils.CheckPassword("p1", u.PasswordHash) && u.ID != ""
	})).Return(nil).Once()

	u, tok, err := newService(repo).SignUp(context.Background(), user.SignUpInput{Name: " A ", Email: " A@X.com", Password: "p1"})
	require.NoError(t, err)
	assert.Empty(t, u.PasswordHash)
	assert.Equal(t, "a@x.com", u.Email)

	claims, err := jwter.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, "a@x.com", claims.Email)
	repo.AssertExpectations(t)
}

func TestSignUp_MissingFields(t *testing.T) {
	cases := []user.SignUpInput{
		{Email: "a@x.com", Password: "p"},
		{Name: "A", Password: "p"},
		{Name: "A", Email: "a@x.com"},
		{Name: "  ", Email: " ", Password: "p"},
	}
	for _, in := range cases {
		repo := new(MockUserRepo)
		_, _, err := newService(repo).SignUp(context.Background(), in)
		require.ErrorIs(t, err, domain.ErrMissingFields)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	}
}

func TestSignUp_PasswordTooLong(t *testing.T) {
	repo := new(MockUserRepo)
	_, _, err := newService(repo).SignUp(context.Background(), user.SignUpInput{
		Name: "A", Email: "a@x.com", Password: strings.Repeat("p", utils.MaxPasswordBytes+8),
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	repo.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	t.Run("pre-check", func(t *testing.T) {
		repo := new(MockUserRepo)
		repo.On("FindByEmail", mock.Anything, "a@x.com").Return(&domain.User{ID: "u-1"}, nil).Once()

		_, _, err := newService(repo).SignUp(context.Background(), user.SignUpInput{Name: "A", Email: "a@x.com", Password: "p"})
		require.ErrorIs(t, err, domain.ErrDuplicateEmail)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
	t.Run("lost race", func(t *testing.T) {
		repo := new(MockUserRepo)
		repo.On("FindByEmail", mock.Anything, "a@x.com").Return(nil, domain.ErrNotFound).Once()
		repo.On("Create", mock.Anything, mock.Anything).Return(domain.ErrDuplicateEmail).Once()

		_, _, err := newService(repo).SignUp(context.Background(), user.SignUpInput{Name: "A", Email: "a@x.com", Password: "p"})
		require.ErrorIs(t, err, domain.ErrDuplicateEmail)
	})
}

func TestSignUp_StoreErrors(t *testing.T) {
	boom := errors.New("db down")

	repo := new(MockUserRepo)
	repo.On("FindByEmail", mock.Anything, "a@x.com").Return(nil, boom).Once()
	_, _, err := newService(repo).SignUp(context.Background(), user.SignUpInput{Name: "A", Email: "a@x.com", Password: "p"})
	require.ErrorIs(t, err, boom)

	repo = new(MockUserRepo)
	repo.On("FindByEmail", mock.Anything, "a@x.com").Return(nil, domain.ErrNotFound).Once()
	repo.On("Create", mock.Anything, mock.Anything).Return(boom).Once()
	_, _, err = newService(repo).SignUp(context.Background(), user.SignUpInput{Name: "A", Email: "a@x.com", Password: "p"})
	require.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, domain.ErrDuplicateEmail)
}

func TestSignUp_TokenFailure(t *testing.T) {
	repo := new(MockUserRepo)
	repo.On("FindByEmail", mock.Anything, "a@x.com").Return(nil, domain.ErrNotFound).Once()
	repo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	svc := user.NewService(repo, failingIssuer{}, zap.NewNop())
	_, _, err := svc.SignUp(context.Background(), user.SignUpInput{Name: "A", Email: "a@x.com", Password: "p"})
	require.Error(t, err)
}

func TestLogin(t *testing.T) {
	hash, err := utils.HashPassword("p1")
	require.NoError(t, err)
	stored := func() *domain.User {
		return &domain.User{ID: "u-1", Name: "A", Email: "a@x.com", PasswordHash: hash}
	}

	t.Run("success", func(t *testing.T) {
		repo := new(MockUserRepo)
		repo.On("FindCredentialsByEmail", mock.Anything, "a@x.com").Return(stored(), nil).Once()

		u, tok, err := newService(repo).Login(context.Background(), "A@x.com ", "p1")
		require.NoError(t, err)
		assert.Empty(t, u.PasswordHash)
		claims, err := jwter.Verify(tok)
		require.NoError(t, err)
		assert.Equal(t, "u-1", claims.UserID)
	})
	t.Run("wrong password", func(t *testing.T) {
		repo := new(MockUserRepo)
		repo.On("FindCredentialsByEmail", mock.Anything, "a@x.com").Return(stored(), nil).Once()

		_, tok, err := newService(repo).Login(context.Background(), "a@x.com", "nope")
		require.ErrorIs(t, err, domain.ErrInvalidCredentials)
		assert.Empty(t, tok)
	})
	t.Run("unknown email", func(t *testing.T) {
		repo := new(MockUserRepo)
		repo.On("FindCredentialsByEmail", mock.Anything, "b@x.com").Return(nil, domain.ErrNotFound).Once()

		_, _, err := newService(repo).Login(context.Background(), "b@x.com", "p1")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
	t.Run("missing fields", func(t *testing.T) {
		_, _, err := newService(new(MockUserRepo)).Login(context.Background(), "", "p1")
		require.ErrorIs(t, err, domain.ErrMissingFields)
	})
	t.Run("store error", func(t *testing.T) {
		repo := new(MockUserRepo)
		repo.On("FindCredentialsByEmail", mock.Anything, "a@x.com").Return(nil, errors.New("db down")).Once()

		_, _, err := newService(repo).Login(context.Background(), "a@x.com", "p1")
		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestGetByEmail(t *testing.T) {
	repo := new(MockUserRepo)
	repo.On("FindByEmail", mock.Anything, "a@x.com").Return(&domain.User{ID: "u-1", Email: "a@x.com"}, nil).Once()
	repo.On("FindByEmail", mock.Anything, "b@x.com").Return(nil, domain.ErrNotFound).Once()
	svc := newService(repo)

	u, err := svc.GetByEmail(context.Background(), "A@X.COM")
	require.NoError(t, err)
	assert.Equal(t, "u-1", u.ID)

	_, err = svc.GetByEmail(context.Background(), "b@x.com")
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.GetByEmail(context.Background(), " ")
	require.ErrorIs(t, err, domain.ErrMissingFields)
	repo.AssertExpectations(t)
}

func TestNewView_HasNoSecret(t *testing.T) {
	v := user.NewView(&domain.User{ID: "u-1", Name: "A", Email: "a@x.com", PasswordHash: "h"})
	assert.Equal(t, user.View{ID: "u-1", Name: "A", Email: "a@x.com"}, v)
}
