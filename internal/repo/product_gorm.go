package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"go-gin-shop-api/internal/domain"
)

// 列表不返回图片
var productListColumns = []string{"id", "name", "price", "is_available", "created_at", "updated_at"}

type ProductRepo struct{ db *gorm.DB }

func NewProductRepo(db *gorm.DB) *ProductRepo { return &ProductRepo{db: db} }

func (r *ProductRepo) Create(ctx context.Context, p *domain.Product) error {
	m := newProductModel(p)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if IsDuplicateKey(err) {
			return domain.ErrDuplicateName
		}
		return fmt.Errorf("create product: %w", err)
	}
	p.CreatedAt, p.UpdatedAt = m.CreatedAt, m.UpdatedAt
	return nil
}

func (r *ProductRepo) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	var m ProductModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find product: %w", err)
	}
	p := m.toDomain()
	return &p, nil
}

func (r *ProductRepo) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	tx := r.db.WithContext(ctx).Model(&ProductModel{}).Select(productListColumns)
	if f.NameContains != "" {
		tx = tx.Where("LOWER(name) LIKE ?", "%"+escapeLike(strings.ToLower(f.NameContains))+"%")
	}
	if f.CreatedSince != nil {
		tx = tx.Where("created_at >= ?", *f.CreatedSince)
	}
	if f.AvailableOnly {
		tx = tx.Where("is_available = ?", true)
	}
	var rows []ProductModel
	if err := tx.Order("created_at desc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	out := make([]domain.Product, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toDomain())
	}
	return out, nil
}

func (r *ProductRepo) Update(ctx context.Context, id string, patch domain.ProductPatch) error {
	fields := map[string]any{}
	if patch.Name != nil {
		fields["name"] = *patch.Name
	}
	if patch.Price != nil {
		fields["price"] = *patch.Price
	}
	if patch.IsAvailable != nil {
		fields["is_available"] = *patch.IsAvailable
	}
	if len(fields) == 0 {
		return r.exists(ctx, id)
	}

	res := r.db.WithContext(ctx).Model(&ProductModel{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		if IsDuplicateKey(res.Error) {
			return domain.ErrDuplicateName
		}
		return fmt.Errorf("update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// mysql 对未变化的行返回 0
		return r.exists(ctx, id)
	}
	return nil
}

func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&ProductModel{})
	if res.Error != nil {
		return fmt.Errorf("delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProductRepo) exists(ctx context.Context, id string) error {
	var n int64
	if err := r.db.WithContext(ctx).Model(&ProductModel{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return fmt.Errorf("find product: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
