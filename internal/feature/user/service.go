package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"go-gin-shop-api/internal/domain"
	"go-gin-shop-api/pkg/utils"
)

// TokenIssuer is satisfied by *auth.JWTer.
type TokenIssuer interface {
	Issue(u *domain.User) (string, error)
}

type SignUpInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Service struct {
	users  domain.UserRepository
	tokens TokenIssuer
	log    *zap.Logger
}

func NewService(users domain.UserRepository, tokens TokenIssuer, l *zap.Logger) *Service {
	return &Service{users: users, tokens: tokens, log: l.Named("account")}
}

// SignUp registers a new account and returns it with a session token.
// The returned user never carries the password hash.
func (s *Service) SignUp(ctx context.Context, in SignUpInput) (*domain.User, string, error) {
	name := strings.TrimSpace(in.Name)
	email := domain.NormalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, "", domain.ErrMissingFields
	}
	if len(in.Password) > utils.MaxPasswordBytes {
		return nil, "", fmt.Errorf("%w: password longer than %d bytes", domain.ErrInvalidInput, utils.MaxPasswordBytes)
	}

	// 快速路径；并发下由唯一索引兜底
	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, "", domain.ErrDuplicateEmail
	case !errors.Is(err, domain.ErrNotFound):
		return nil, "", fmt.Errorf("check email: %w", err)
	}

	hash, err := utils.HashPassword(in.Password)
	if errors.Is(err, utils.ErrPasswordTooLong) {
		return nil, "", fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}
	u := &domain.User{ID: utils.NewID(), Name: name, Email: email, PasswordHash: hash}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}
	u.PasswordHash = ""

	tok, err := s.tokens.Issue(u)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	s.log.Info("user signed up", zap.String("user_id", u.ID))
	return u, tok, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, "", domain.ErrMissingFields
	}

	u, err := s.users.FindCredentialsByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("find user: %w", err)
	}
	if !utils.CheckPassword(password, u.PasswordHash) {
		return nil, "", domain.ErrInvalidCredentials
	}
	u.PasswordHash = ""

	tok, err := s.tokens.Issue(u)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return u, tok, nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return nil, domain.ErrMissingFields
	}
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}
