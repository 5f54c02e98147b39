package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aquaflow/servicecrm/internal/core/domain"
)

const (
	defaultTimeout = 10 * time.Second
	indexTimeout   = 30 * time.Second
)

const (
	colCustomers     = "customers"
	colProducts      = "products"
	colAssets        = "assets"
	colServiceOrders = "service_orders"
	colUsers         = "users"
	colRoles         = "roles"
)

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. A default timeout is
// applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	return client, client.Database(cfg.Database), nil
}

// EnsureIndexes creates the lookup and uniqueness indexes of every
// collection. Optional unique fields use partial indexes so absent values
// never collide.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	present := func(field string) *options.IndexOptions {
		return options.Index().
			SetUnique(true).
			SetPartialFilterExpression(bson.M{field: bson.M{"$exists": true}})
	}

	specs := map[string][]mongo.IndexModel{
		colCustomers: {
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
		colProducts: {
			{Keys: bson.D{{Key: "sku", Value: 1}}, Options: present("sku")},
			{Keys: bson.D{{Key: "category", Value: 1}, {Key: "is_active", Value: 1}}},
		},
		colAssets: {
			{Keys: bson.D{{Key: "serial", Value: 1}}, Options: present("serial")},
			{Keys: bson.D{{Key: "customer_id", Value: 1}}},
			{Keys: bson.D{{Key: "product_id", Value: 1}}},
		},
		colServiceOrders: {
			{Keys: bson.D{{Key: "customer_id", Value: 1}, {Key: "requested_at", Value: -1}}},
			{Keys: bson.D{{Key: "asset_id", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "technician_id", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
		colUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "role_id", Value: 1}}},
		},
	}

	for col, models := range specs {
		if _, err := db.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("ensure indexes %s: %w", col, err)
		}
	}
	return nil
}

// translate maps driver errors onto domain errors. notFound is returned for
// mongo.ErrNoDocuments.
func translate(err, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return notFound
	case mongo.IsDuplicateKeyError(err):
		return domain.ErrDuplicate
	}
	return err
}

func toDecimal128(d *decimal.Decimal) (*primitive.Decimal128, error) {
	if d == nil {
		return nil, nil
	}
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return nil, fmt.Errorf("encode decimal %s: %w", d, err)
	}
	return &v, nil
}

func fromDecimal128(v *primitive.Decimal128) (*decimal.Decimal, error) {
	if v == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return nil, fmt.Errorf("decode decimal %s: %w", v, err)
	}
	return &d, nil
}

// lookupName joins another collection by id into the temporary array tmp.
// Callers lift the field they need with $first and project tmp away.
func lookupName(from, localField, tmp string) bson.D {
	return bson.D{{Key: "$lookup", Value: bson.M{
		"from":         from,
		"localField":   localField,
		"foreignField": "_id",
		"as":           tmp,
	}}}
}

func decodeAll[T any](ctx context.Context, cur *mongo.Cursor) ([]T, error) {
	defer cur.Close(ctx)
	out := make([]T, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
