package repo

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"go-gin-shop-api/internal/core/config"
	"go-gin-shop-api/internal/core/database"
	"go-gin-shop-api/internal/domain"
)

// Store bundles the repositories of one backend and its shutdown hook.
type Store struct {
	Driver   string
	Users    domain.UserRepository
	Products domain.ProductRepository
	Close    func(context.Context) error
}

// Open connects the backend named by cfg.Driver: postgres, mysql, mongo or memory.
func Open(ctx context.Context, cfg config.DB, l *zap.Logger) (*Store, error) {
	switch cfg.Driver {
	case "memory":
		l.Warn("using in-memory store, data is lost on restart")
		return &Store{
			Driver:   cfg.Driver,
			Users:    NewMemoryUserRepo(),
			Products: NewMemoryProductRepo(),
			Close:    func(context.Context) error { return nil },
		}, nil

	case "mongo":
		client, db, err := database.NewMongo(ctx, database.MongoOpts{
			URI:         cfg.DSN,
			Database:    cfg.Name,
			Username:    cfg.Username,
			Password:    cfg.Password,
			MaxPoolSize: uint64(max(0, cfg.MaxOpenConns)),
		})
		if err != nil {
			return nil, err
		}
		users, products := NewMongoUserRepo(db), NewMongoProductRepo(db)
		if cfg.AutoMigrate {
			if err := users.EnsureIndexes(ctx); err != nil {
				return nil, err
			}
			if err := products.EnsureIndexes(ctx); err != nil {
				return nil, err
			}
			l.Info("mongo indexes ensured")
		}
		return &Store{Driver: cfg.Driver, Users: users, Products: products, Close: client.Disconnect}, nil

	default:
		db, err := database.NewGorm(database.Opts{
			Driver:             cfg.Driver,
			DSN:                cfg.DSN,
			Username:           cfg.Username,
			Password:           cfg.Password,
			MaxOpenConns:       cfg.MaxOpenConns,
			MaxIdleConns:       cfg.MaxIdleConns,
			ConnMaxLifetimeMin: cfg.ConnMaxLifetimeMin,
			LogLevel:           cfg.LogLevel,
		}, l)
		if err != nil {
			return nil, err
		}
		if cfg.AutoMigrate {
			if err := db.WithContext(ctx).AutoMigrate(Models()...); err != nil {
				return nil, fmt.Errorf("automigrate: %w", err)
			}
			l.Info("automigrate done")
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		return &Store{
			Driver:   cfg.Driver,
			Users:    NewUserRepo(db),
			Products: NewProductRepo(db),
			Close:    func(context.Context) error { return sqlDB.Close() },
		}, nil
	}
}
