package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aquaflow/servicecrm/internal/core/domain"
	"github.com/aquaflow/servicecrm/internal/core/ports"
)

type ProductRepository struct {
	col *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{col: db.Collection(colProducts)}
}

type productDoc struct {
	ID                       string                `bson:"_id"`
	SKU                      string                `bson:"sku,omitempty"`
	Name                     string                `bson:"name"`
	Category                 string                `bson:"category"`
	DefaultReplacementMonths *int                  `bson:"default_replacement_months,omitempty"`
	Price                    *primitive.Decimal128 `bson:"price,omitempty"`
	IsActive                 bool                  `bson:"is_active"`
	CreatedAt                time.Time             `bson:"created_at"`
	UpdatedAt                time.Time             `bson:"updated_at"`
}

func newProductDoc(p *domain.Product) (productDoc, error) {
	price, err := toDecimal128(p.Price)
	if err != nil {
		return productDoc{}, err
	}
	return productDoc{
		ID:                       p.ProductID,
		SKU:                      p.SKU,
		Name:                     p.Name,
		Category:                 string(p.Category),
		DefaultReplacementMonths: p.DefaultReplacementMonths,
		Price:                    price,
		IsActive:                 p.IsActive,
		CreatedAt:                p.CreatedAt,
		UpdatedAt:                p.UpdatedAt,
	}, nil
}

func (d productDoc) toDomain() (domain.Product, error) {
	price, err := fromDecimal128(d.Price)
	if err != nil {
		return domain.Product{}, err
	}
	return domain.Product{
		ProductID:                d.ID,
		SKU:                      d.SKU,
		Name:                     d.Name,
		Category:                 domain.ProductCategory(d.Category),
		DefaultReplacementMonths: d.DefaultReplacementMonths,
		Price:                    price,
		IsActive:                 d.IsActive,
		CreatedAt:                d.CreatedAt,
		UpdatedAt:                d.UpdatedAt,
	}, nil
}

func (r *ProductRepository) List(ctx context.Context, f ports.ProductFilter) ([]domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{}
	if f.Category != "" {
		query["category"] = string(f.Category)
	}
	if f.ActiveOnly {
		query["is_active"] = true
	}

	cur, err := r.col.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	docs, err := decodeAll[productDoc](ctx, cur)
	if err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	out := make([]domain.Product, 0, len(docs))
	for _, d := range docs {
		p, err := d.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *ProductRepository) Get(ctx context.Context, productID string) (*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d productDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": productID}).Decode(&d); err != nil {
		return nil, translate(err, domain.ErrProductNotFound)
	}
	p, err := d.toDomain()
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc, err := newProductDoc(p)
	if err != nil {
		return err
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return translate(err, domain.ErrProductNotFound)
	}
	return nil
}

func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc, err := newProductDoc(p)
	if err != nil {
		return err
	}
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": p.ProductID}, doc)
	if err != nil {
		return translate(err, domain.ErrProductNotFound)
	}
	if res.MatchedCount == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, productID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": productID})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}
