package repo

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"go-gin-shop-api/internal/domain"
)

type UserModel struct {
	ID           string `gorm:"primaryKey;type:varchar(36)"`
	Name         string `gorm:"size:64;not null"`
	Email        string `gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string `gorm:"size:100;not null"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (UserModel) TableName() string { return "users" }

func newUserModel(u *domain.User) UserModel {
	return UserModel{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (m UserModel) toDomain() *domain.User {
	return &domain.User{
		ID:           m.ID,
		Name:         m.Name,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

type ProductModel struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)"`
	Name        string    `gorm:"uniqueIndex;size:255;not null"`
	Images      imageList `gorm:"serializer:json"`
	Price       float64   `gorm:"not null"`
	IsAvailable bool      `gorm:"not null;index"`

	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (ProductModel) TableName() string { return "products" }

// imageList holds base64 blobs, up to 12 x 5MB before encoding.
type imageList []string

func (imageList) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "mysql" {
		return "LONGTEXT"
	}
	return "TEXT"
}

func newProductModel(p *domain.Product) ProductModel {
	return ProductModel{
		ID:          p.ID,
		Name:        p.Name,
		Images:      p.Images,
		Price:       p.Price,
		IsAvailable: p.IsAvailable,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (m ProductModel) toDomain() domain.Product {
	return domain.Product{
		ID:          m.ID,
		Name:        m.Name,
		Images:      []string(m.Images),
		Price:       m.Price,
		IsAvailable: m.IsAvailable,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// Models lists every table AutoMigrate manages.
func Models() []any { return []any{&UserModel{}, &ProductModel{}} }
