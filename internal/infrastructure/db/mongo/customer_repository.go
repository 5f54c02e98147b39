package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aquaflow/servicecrm/internal/core/domain"
)

type CustomerRepository struct {
	col *mongo.Collection
}

func NewCustomerRepository(db *mongo.Database) *CustomerRepository {
	return &CustomerRepository{col: db.Collection(colCustomers)}
}

type customerDoc struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Status    string    `bson:"status"`
	Email     string    `bson:"email,omitempty"`
	Phone     string    `bson:"phone,omitempty"`
	Street    string    `bson:"street,omitempty"`
	City      string    `bson:"city,omitempty"`
	StateCode string    `bson:"state_code,omitempty"`
	Notes     string    `bson:"notes,omitempty"`
	CreatedBy string    `bson:"created_by,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func newCustomerDoc(c *domain.Customer) customerDoc {
	return customerDoc{
		ID:        c.CustomerID,
		Name:      c.Name,
		Status:    string(c.Status),
		Email:     c.Email,
		Phone:     c.Phone,
		Street:    c.Street,
		City:      c.City,
		StateCode: c.StateCode,
		Notes:     c.Notes,
		CreatedBy: c.CreatedBy,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (d customerDoc) toDomain() domain.Customer {
	return domain.Customer{
		CustomerID: d.ID,
		Name:       d.Name,
		Status:     domain.CustomerStatus(d.Status),
		Email:      d.Email,
		Phone:      d.Phone,
		Street:     d.Street,
		City:       d.City,
		StateCode:  d.StateCode,
		Notes:      d.Notes,
		CreatedBy:  d.CreatedBy,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

func (r *CustomerRepository) List(ctx context.Context) ([]domain.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find customers: %w", err)
	}
	docs, err := decodeAll[customerDoc](ctx, cur)
	if err != nil {
		return nil, fmt.Errorf("decode customers: %w", err)
	}
	out := make([]domain.Customer, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *CustomerRepository) Get(ctx context.Context, customerID string) (*domain.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d customerDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": customerID}).Decode(&d); err != nil {
		return nil, translate(err, domain.ErrCustomerNotFound)
	}
	c := d.toDomain()
	return &c, nil
}

func (r *CustomerRepository) Create(ctx context.Context, c *domain.Customer) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, newCustomerDoc(c)); err != nil {
		return translate(err, domain.ErrCustomerNotFound)
	}
	return nil
}

func (r *CustomerRepository) Update(ctx context.Context, c *domain.Customer) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": c.CustomerID}, newCustomerDoc(c))
	if err != nil {
		return translate(err, domain.ErrCustomerNotFound)
	}
	if res.MatchedCount == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}

func (r *CustomerRepository) Delete(ctx context.Context, customerID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": customerID})
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}

func (r *CustomerRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count customers: %w", err)
	}
	return n, nil
}
