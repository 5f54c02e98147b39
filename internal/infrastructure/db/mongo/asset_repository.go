package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/aquaflow/servicecrm/internal/core/domain"
	"github.com/aquaflow/servicecrm/internal/core/ports"
)

type AssetRepository struct {
	col *mongo.Collection
}

func NewAssetRepository(db *mongo.Database) *AssetRepository {
	return &AssetRepository{col: db.Collection(colAssets)}
}

// assetDoc is the stored shape. Last service date and display names are
// never persisted; they are joined on read.
type assetDoc struct {
	ID                     string     `bson:"_id"`
	CustomerID             string     `bson:"customer_id"`
	ProductID              string     `bson:"product_id"`
	Serial                 string     `bson:"serial,omitempty"`
	InstallDate            *time.Time `bson:"install_date,omitempty"`
	InstalledBy            string     `bson:"installed_by,omitempty"`
	ServiceFrequencyMonths *int       `bson:"service_frequency_months,omitempty"`
	Status                 string     `bson:"status"`
	FinancingStatus        string     `bson:"financing_status,omitempty"`
	Notes                  string     `bson:"notes,omitempty"`
	CreatedAt              time.Time  `bson:"created_at"`
	UpdatedAt              time.Time  `bson:"updated_at"`
}

type assetRow struct {
	Stored          assetDoc   `bson:",inline"`
	LastServiceDate *time.Time `bson:"last_service_date"`
	CustomerName    string     `bson:"customer_name"`
	ProductName     string     `bson:"product_name"`
}

func newAssetDoc(a *domain.Asset) assetDoc {
	return assetDoc{
		ID:                     a.AssetID,
		CustomerID:             a.CustomerID,
		ProductID:              a.ProductID,
		Serial:                 a.Serial,
		InstallDate:            a.InstallDate,
		InstalledBy:            a.InstalledBy,
		ServiceFrequencyMonths: a.ServiceFrequencyMonths,
		Status:                 string(a.Status),
		FinancingStatus:        a.FinancingStatus,
		Notes:                  a.Notes,
		CreatedAt:              a.CreatedAt,
		UpdatedAt:              a.UpdatedAt,
	}
}

func (r assetRow) toDomain() domain.Asset {
	return domain.Asset{
		AssetID:                r.Stored.ID,
		CustomerID:             r.Stored.CustomerID,
		ProductID:              r.Stored.ProductID,
		Serial:                 r.Stored.Serial,
		InstallDate:            r.Stored.InstallDate,
		InstalledBy:            r.Stored.InstalledBy,
		ServiceFrequencyMonths: r.Stored.ServiceFrequencyMonths,
		Status:                 domain.AssetStatus(r.Stored.Status),
		FinancingStatus:        r.Stored.FinancingStatus,
		Notes:                  r.Stored.Notes,
		LastServiceDate:        r.LastServiceDate,
		CustomerName:           r.CustomerName,
		ProductName:            r.ProductName,
		CreatedAt:              r.Stored.CreatedAt,
		UpdatedAt:              r.Stored.UpdatedAt,
	}
}

// pipeline joins the latest completed order date and the display names.
func (r *AssetRepository) pipeline(match bson.M) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$lookup", Value: bson.M{
			"from": colServiceOrders,
			"let":  bson.M{"aid": "$_id"},
			"pipeline": bson.A{
				bson.M{"$match": bson.M{"$expr": bson.M{"$and": bson.A{
					bson.M{"$eq": bson.A{"$asset_id", "$$aid"}},
					bson.M{"$eq": bson.A{"$status", string(domain.OrderCompleted)}},
				}}}},
				bson.M{"$group": bson.M{"_id": nil, "last": bson.M{"$max": "$completed_at"}}},
			},
			"as": "_svc",
		}}},
		lookupName(colCustomers, "customer_id", "_cust"),
		lookupName(colProducts, "product_id", "_prod"),
		{{Key: "$addFields", Value: bson.M{
			"last_service_date": bson.M{"$first": "$_svc.last"},
			"customer_name":     bson.M{"$first": "$_cust.name"},
			"product_name":      bson.M{"$first": "$_prod.name"},
		}}},
		{{Key: "$project", Value: bson.M{"_svc": 0, "_cust": 0, "_prod": 0}}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}}},
	}
}

func (r *AssetRepository) find(ctx context.Context, match bson.M) ([]domain.Asset, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Aggregate(ctx, r.pipeline(match))
	if err != nil {
		return nil, fmt.Errorf("aggregate assets: %w", err)
	}
	rows, err := decodeAll[assetRow](ctx, cur)
	if err != nil {
		return nil, fmt.Errorf("decode assets: %w", err)
	}
	out := make([]domain.Asset, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *AssetRepository) List(ctx context.Context, f ports.AssetFilter) ([]domain.Asset, error) {
	match := bson.M{}
	if f.CustomerID != "" {
		match["customer_id"] = f.CustomerID
	}
	if f.ProductID != "" {
		match["product_id"] = f.ProductID
	}
	if f.ActiveOnly {
		match["status"] = string(domain.AssetActive)
	}
	return r.find(ctx, match)
}

func (r *AssetRepository) Get(ctx context.Context, assetID string) (*domain.Asset, error) {
	assets, err := r.find(ctx, bson.M{"_id": assetID})
	if err != nil {
		return nil, err
	}
	if len(assets) == 0 {
		return nil, domain.ErrAssetNotFound
	}
	return &assets[0], nil
}

func (r *AssetRepository) Create(ctx context.Context, a *domain.Asset) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, newAssetDoc(a)); err != nil {
		return translate(err, domain.ErrAssetNotFound)
	}
	return nil
}

func (r *AssetRepository) Update(ctx context.Context, a *domain.Asset) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": a.AssetID}, newAssetDoc(a))
	if err != nil {
		return translate(err, domain.ErrAssetNotFound)
	}
	if res.MatchedCount == 0 {
		return domain.ErrAssetNotFound
	}
	return nil
}

func (r *AssetRepository) Delete(ctx context.Context, assetID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": assetID})
	if err != nil {
		return fmt.Errorf("delete asset: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrAssetNotFound
	}
	return nil
}
