package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"go-gin-shop-api/internal/domain"
)

var userPublicColumns = []string{"id", "name", "email", "created_at", "updated_at"}

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	m := newUserModel(u)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if IsDuplicateKey(err) {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("create user: %w", err)
	}
	u.CreatedAt, u.UpdatedAt = m.CreatedAt, m.UpdatedAt
	return nil
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.first(ctx, userPublicColumns, "id = ?", id)
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.first(ctx, userPublicColumns, "email = ?", email)
}

func (r *UserRepo) FindCredentialsByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.first(ctx, nil, "email = ?", email)
}

func (r *UserRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&UserModel{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (r *UserRepo) first(ctx context.Context, cols []string, cond string, arg any) (*domain.User, error) {
	tx := r.db.WithContext(ctx)
	if len(cols) > 0 {
		tx = tx.Select(cols)
	}
	var m UserModel
	err := tx.Where(cond, arg).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return m.toDomain(), nil
}
