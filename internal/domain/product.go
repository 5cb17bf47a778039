package domain

import (
	"context"
	"strings"
	"time"
)

type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Images      []string  `json:"images,omitempty"`
	Price       float64   `json:"price"`
	IsAvailable bool      `json:"isAvailable"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProductFilter narrows List. Zero values match everything.
type ProductFilter struct {
	NameContains  string
	CreatedSince  *time.Time
	AvailableOnly bool
}

// ProductPatch carries the fields an update may touch; nil means unchanged.
type ProductPatch struct {
	Name        *string
	Price       *float64
	IsAvailable *bool
}

func (p ProductPatch) Empty() bool {
	return p.Name == nil && p.Price == nil && p.IsAvailable == nil
}

// ProductRepository stores catalog documents. List results omit Images.
type ProductRepository interface {
	Create(ctx context.Context, p *Product) error
	FindByID(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context, f ProductFilter) ([]Product, error)
	Update(ctx context.Context, id string, patch ProductPatch) error
	Delete(ctx context.Context, id string) error
}

func NormalizeProductName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
