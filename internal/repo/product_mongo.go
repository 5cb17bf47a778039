package repo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"go-gin-shop-api/internal/domain"
)

type productDoc struct {
	ID          string    `bson:"_id"`
	Name        string    `bson:"name"`
	Images      []string  `bson:"images,omitempty"`
	Price       float64   `bson:"price"`
	IsAvailable bool      `bson:"isAvailable"`
	CreatedAt   time.Time `bson:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt"`
}

func (d productDoc) toDomain() domain.Product {
	return domain.Product{
		ID:          d.ID,
		Name:        d.Name,
		Images:      d.Images,
		Price:       d.Price,
		IsAvailable: d.IsAvailable,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type MongoProductRepo struct{ coll *mongo.Collection }

func NewMongoProductRepo(db *mongo.Database) *MongoProductRepo {
	return &MongoProductRepo{coll: db.Collection("products")}
}

func (r *MongoProductRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("products index: %w", err)
	}
	return nil
}

func (r *MongoProductRepo) Create(ctx context.Context, p *domain.Product) error {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	_, err := r.coll.InsertOne(ctx, productDoc{
		ID:          p.ID,
		Name:        p.Name,
		Images:      p.Images,
		Price:       p.Price,
		IsAvailable: p.IsAvailable,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	})
	if err != nil {
		if IsDuplicateKey(err) {
			return domain.ErrDuplicateName
		}
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (r *MongoProductRepo) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	var d productDoc
	err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find product: %w", err)
	}
	p := d.toDomain()
	return &p, nil
}

func (r *MongoProductRepo) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	filter := productFilter(f)
	opts := options.Find().
		SetProjection(bson.D{{Key: "images", Value: 0}}).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	out := make([]domain.Product, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *MongoProductRepo) Update(ctx context.Context, id string, patch domain.ProductPatch) error {
	set := bson.D{{Key: "updatedAt", Value: time.Now().UTC()}}
	if patch.Name != nil {
		set = append(set, bson.E{Key: "name", Value: *patch.Name})
	}
	if patch.Price != nil {
		set = append(set, bson.E{Key: "price", Value: *patch.Price})
	}
	if patch.IsAvailable != nil {
		set = append(set, bson.E{Key: "isAvailable", Value: *patch.IsAvailable})
	}
	res, err := r.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: id}}, bson.D{{Key: "$set", Value: set}})
	if err != nil {
		if IsDuplicateKey(err) {
			return domain.ErrDuplicateName
		}
		return fmt.Errorf("update product: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MongoProductRepo) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func productFilter(f domain.ProductFilter) bson.D {
	filter := bson.D{}
	if f.NameContains != "" {
		filter = append(filter, bson.E{Key: "name", Value: bson.Regex{Pattern: regexp.QuoteMeta(f.NameContains), Options: "i"}})
	}
	if f.CreatedSince != nil {
		filter = append(filter, bson.E{Key: "createdAt", Value: bson.D{{Key: "$gte", Value: *f.CreatedSince}}})
	}
	if f.AvailableOnly {
		filter = append(filter, bson.E{Key: "isAvailable", Value: true})
	}
	return filter
}
