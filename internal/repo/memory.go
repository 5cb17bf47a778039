package repo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go-gin-shop-api/internal/domain"
)

// MemoryUserRepo keeps users in process; used for local runs and tests.
type MemoryUserRepo struct {
	mu      sync.RWMutex
	byID    map[string]domain.User
	byEmail map[string]string
}

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{
		byID:    make(map[string]domain.User),
		byEmail: make(map[string]string),
	}
}

func (r *MemoryUserRepo) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[u.Email]; ok {
		return domain.ErrDuplicateEmail
	}
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	r.byID[u.ID] = *u
	r.byEmail[u.Email] = u.ID
	return nil
}

func (r *MemoryUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	u.PasswordHash = ""
	return &u, nil
}

func (r *MemoryUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := r.FindCredentialsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = ""
	return u, nil
}

func (r *MemoryUserRepo) FindCredentialsByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	u := r.byID[id]
	return &u, nil
}

func (r *MemoryUserRepo) Count(context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.byID)), nil
}

// Delete is not part of domain.UserRepository; tests use it to revoke a user.
func (r *MemoryUserRepo) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[id]; ok {
		delete(r.byEmail, u.Email)
		delete(r.byID, id)
	}
}

type MemoryProductRepo struct {
	mu   sync.RWMutex
	byID map[string]domain.Product
}

func NewMemoryProductRepo() *MemoryProductRepo {
	return &MemoryProductRepo{byID: make(map[string]domain.Product)}
}

func (r *MemoryProductRepo) Create(_ context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.nameTaken(p.Name, "") {
		return domain.ErrDuplicateName
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	cp := *p
	cp.Images = append([]string(nil), p.Images...)
	r.byID[p.ID] = cp
	return nil
}

func (r *MemoryProductRepo) FindByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p.Images = append([]string(nil), p.Images...)
	return &p, nil
}

func (r *MemoryProductRepo) List(_ context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q := strings.ToLower(f.NameContains)
	out := make([]domain.Product, 0, len(r.byID))
	for _, p := range r.byID {
		if q != "" && !strings.Contains(strings.ToLower(p.Name), q) {
			continue
		}
		if f.CreatedSince != nil && p.CreatedAt.Before(*f.CreatedSince) {
			continue
		}
		if f.AvailableOnly && !p.IsAvailable {
			continue
		}
		p.Images = nil
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryProductRepo) Update(_ context.Context, id string, patch domain.ProductPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	if patch.Name != nil {
		if r.nameTaken(*patch.Name, id) {
			return domain.ErrDuplicateName
		}
		p.Name = *patch.Name
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.IsAvailable != nil {
		p.IsAvailable = *patch.IsAvailable
	}
	p.UpdatedAt = time.Now().UTC()
	r.byID[id] = p
	return nil
}

func (r *MemoryProductRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

// caller holds mu
func (r *MemoryProductRepo) nameTaken(name, exceptID string) bool {
	for id, p := range r.byID {
		if id != exceptID && p.Name == name {
			return true
		}
	}
	return false
}
