package product

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"go-gin-shop-api/internal/core/cache"
	"go-gin-shop-api/internal/domain"
	"go-gin-shop-api/pkg/utils"
)

type CreateInput struct {
	Name        string
	Price       *float64
	IsAvailable *bool // nil → true
	Images      []string
}

type Service struct {
	repo  domain.ProductRepository
	cache *cache.Cache // nil disables caching
	ttl   time.Duration
	log   *zap.Logger
}

func NewService(repo domain.ProductRepository, c *cache.Cache, ttl time.Duration, l *zap.Logger) *Service {
	return &Service{repo: repo, cache: c, ttl: ttl, log: l.Named("catalog")}
}

func cacheKey(id string) string { return "product:" + id }

func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Product, error) {
	name := domain.NormalizeProductName(in.Name)
	if name == "" || in.Price == nil {
		return nil, domain.ErrMissingFields
	}
	if *in.Price < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", domain.ErrInvalidInput)
	}
	if len(in.Images) == 0 {
		return nil, ErrNoImages
	}
	if len(in.Images) > MaxImages {
		return nil, ErrTooManyImages
	}
	available := true
	if in.IsAvailable != nil {
		available = *in.IsAvailable
	}

	p := &domain.Product{
		ID:          utils.NewID(),
		Name:        name,
		Images:      in.Images,
		Price:       *in.Price,
		IsAvailable: available,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		if errors.Is(err, domain.ErrDuplicateName) {
			return nil, err
		}
		return nil, fmt.Errorf("create product: %w", err)
	}
	s.log.Info("product created", zap.String("product_id", p.ID), zap.Int("images", len(p.Images)))
	return p, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	return s.list(ctx, domain.ProductFilter{})
}

// Search matches name substrings case-insensitively; no match is ErrNotFound.
func (s *Service) Search(ctx context.Context, name string) ([]domain.Product, error) {
	q := strings.TrimSpace(name)
	if q == "" {
		return nil, domain.ErrMissingFields
	}
	return s.nonEmpty(s.list(ctx, domain.ProductFilter{NameContains: q}))
}

func (s *Service) CreatedSince(ctx context.Context, since time.Time) ([]domain.Product, error) {
	return s.nonEmpty(s.list(ctx, domain.ProductFilter{CreatedSince: &since}))
}

func (s *Service) InStock(ctx context.Context) ([]domain.Product, error) {
	return s.list(ctx, domain.ProductFilter{AvailableOnly: true})
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	if s.cache == nil {
		return s.find(ctx, id)
	}
	return cache.GetOrLoadJSON(s.cache, ctx, cacheKey(id), s.ttl, domain.ErrNotFound, func(ctx context.Context) (*domain.Product, error) {
		return s.find(ctx, id)
	})
}

func (s *Service) Update(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	if patch.Empty() {
		return nil, domain.ErrMissingFields
	}
	if patch.Name != nil {
		n := domain.NormalizeProductName(*patch.Name)
		if n == "" {
			return nil, fmt.Errorf("%w: name must not be empty", domain.ErrInvalidInput)
		}
		patch.Name = &n
	}
	if patch.Price != nil && *patch.Price < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", domain.ErrInvalidInput)
	}

	if err := s.repo.Update(ctx, id, patch); err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrDuplicateName) {
			return nil, err
		}
		return nil, fmt.Errorf("update product: %w", err)
	}
	s.invalidate(ctx, id)
	return s.find(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete product: %w", err)
	}
	s.invalidate(ctx, id)
	s.log.Info("product deleted", zap.String("product_id", id))
	return nil
}

func (s *Service) find(ctx context.Context, id string) (*domain.Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return p, nil
}

func (s *Service) list(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	ps, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return ps, nil
}

func (s *Service) nonEmpty(ps []domain.Product, err error) ([]domain.Product, error) {
	if err != nil {
		return nil, err
	}
	if len(ps) == 0 {
		return nil, domain.ErrNotFound
	}
	return ps, nil
}

func (s *Service) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cacheKey(id)); err != nil {
		s.log.Warn("cache invalidate failed", zap.String("key", cacheKey(id)), zap.Error(err))
	}
}

// ParseDate accepts RFC 3339 timestamps or plain YYYY-MM-DD dates (UTC midnight).
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, domain.ErrMissingFields
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q", domain.ErrInvalidInput, s)
	}
	return t, nil
}
