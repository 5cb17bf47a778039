package user

import (
	"time"

	"go-gin-shop-api/internal/domain"
)

// View is the only user shape written to clients.
type View struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewView(u *domain.User) View {
	return View{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAt}
}
