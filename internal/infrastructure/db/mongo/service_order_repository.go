package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/aquaflow/servicecrm/internal/core/domain"
	"github.com/aquaflow/servicecrm/internal/core/ports"
)

type ServiceOrderRepository struct {
	col *mongo.Collection
}

func NewServiceOrderRepository(db *mongo.Database) *ServiceOrderRepository {
	return &ServiceOrderRepository{col: db.Collection(colServiceOrders)}
}

type orderDoc struct {
	ID            string                `bson:"_id"`
	CustomerID    string                `bson:"customer_id"`
	AssetID       string                `bson:"asset_id,omitempty"`
	TechnicianID  string                `bson:"technician_id,omitempty"`
	ServiceType   string                `bson:"service_type"`
	Status        string                `bson:"status"`
	RequestedAt   time.Time             `bson:"requested_at"`
	ScheduledAt   *time.Time            `bson:"scheduled_at,omitempty"`
	CompletedAt   *time.Time            `bson:"completed_at,omitempty"`
	Amount        *primitive.Decimal128 `bson:"amount,omitempty"`
	PaymentStatus string                `bson:"payment_status"`
	Notes         string                `bson:"notes,omitempty"`
}

type orderRow struct {
	Stored         orderDoc `bson:",inline"`
	CustomerName   string   `bson:"customer_name"`
	TechnicianName string   `bson:"technician_name"`
	AssetSerial    string   `bson:"asset_serial"`
}

func newOrderDoc(o *domain.ServiceOrder) (orderDoc, error) {
	amount, err := toDecimal128(o.Amount)
	if err != nil {
		return orderDoc{}, err
	}
	return orderDoc{
		ID:            o.ServiceID,
		CustomerID:    o.CustomerID,
		AssetID:       o.AssetID,
		TechnicianID:  o.TechnicianID,
		ServiceType:   string(o.ServiceType),
		Status:        string(o.Status),
		RequestedAt:   o.RequestedAt,
		ScheduledAt:   o.ScheduledAt,
		CompletedAt:   o.CompletedAt,
		Amount:        amount,
		PaymentStatus: string(o.PaymentStatus),
		Notes:         o.Notes,
	}, nil
}

func (r orderRow) toDomain() (domain.ServiceOrder, error) {
	amount, err := fromDecimal128(r.Stored.Amount)
	if err != nil {
		return domain.ServiceOrder{}, err
	}
	return domain.ServiceOrder{
		ServiceID:      r.Stored.ID,
		CustomerID:     r.Stored.CustomerID,
		AssetID:        r.Stored.AssetID,
		TechnicianID:   r.Stored.TechnicianID,
		ServiceType:    domain.ServiceType(r.Stored.ServiceType),
		Status:         domain.OrderStatus(r.Stored.Status),
		RequestedAt:    r.Stored.RequestedAt,
		ScheduledAt:    r.Stored.ScheduledAt,
		CompletedAt:    r.Stored.CompletedAt,
		Amount:         amount,
		PaymentStatus:  domain.PaymentStatus(r.Stored.PaymentStatus),
		Notes:          r.Stored.Notes,
		CustomerName:   r.CustomerName,
		TechnicianName: r.TechnicianName,
		AssetSerial:    r.AssetSerial,
	}, nil
}

func orderMatch(f ports.OrderFilter) bson.M {
	match := bson.M{}
	if f.CustomerID != "" {
		match["customer_id"] = f.CustomerID
	}
	if f.AssetID != "" {
		match["asset_id"] = f.AssetID
	}
	if f.TechnicianID != "" {
		match["technician_id"] = f.TechnicianID
	}
	if len(f.Statuses) > 0 {
		statuses := make(bson.A, 0, len(f.Statuses))
		for _, s := range f.Statuses {
			statuses = append(statuses, string(s))
		}
		match["status"] = bson.M{"$in": statuses}
	}
	return match
}

func (r *ServiceOrderRepository) find(ctx context.Context, match bson.M) ([]domain.ServiceOrder, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		lookupName(colCustomers, "customer_id", "_cust"),
		lookupName(colUsers, "technician_id", "_tech"),
		lookupName(colAssets, "asset_id", "_asset"),
		{{Key: "$addFields", Value: bson.M{
			"customer_name":   bson.M{"$first": "$_cust.name"},
			"technician_name": bson.M{"$first": "$_tech.full_name"},
			"asset_serial":    bson.M{"$first": "$_asset.serial"},
		}}},
		{{Key: "$project", Value: bson.M{"_cust": 0, "_tech": 0, "_asset": 0}}},
		{{Key: "$sort", Value: bson.D{{Key: "requested_at", Value: -1}, {Key: "_id", Value: 1}}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate service orders: %w", err)
	}
	rows, err := decodeAll[orderRow](ctx, cur)
	if err != nil {
		return nil, fmt.Errorf("decode service orders: %w", err)
	}
	out := make([]domain.ServiceOrder, 0, len(rows))
	for _, row := range rows {
		o, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func (r *ServiceOrderRepository) List(ctx context.Context, f ports.OrderFilter) ([]domain.ServiceOrder, error) {
	return r.find(ctx, orderMatch(f))
}

func (r *ServiceOrderRepository) Get(ctx context.Context, serviceID string) (*domain.ServiceOrder, error) {
	orders, err := r.find(ctx, bson.M{"_id": serviceID})
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, domain.ErrServiceOrderNotFound
	}
	return &orders[0], nil
}

func (r *ServiceOrderRepository) Create(ctx context.Context, o *domain.ServiceOrder) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc, err := newOrderDoc(o)
	if err != nil {
		return err
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return translate(err, domain.ErrServiceOrderNotFound)
	}
	return nil
}

func (r *ServiceOrderRepository) Update(ctx context.Context, o *domain.ServiceOrder) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc, err := newOrderDoc(o)
	if err != nil {
		return err
	}
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": o.ServiceID}, doc)
	if err != nil {
		return translate(err, domain.ErrServiceOrderNotFound)
	}
	if res.MatchedCount == 0 {
		return domain.ErrServiceOrderNotFound
	}
	return nil
}

func (r *ServiceOrderRepository) Delete(ctx context.Context, serviceID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": serviceID})
	if err != nil {
		return fmt.Errorf("delete service order: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrServiceOrderNotFound
	}
	return nil
}

func (r *ServiceOrderRepository) Complete(ctx context.Context, serviceID string, at time.Time) (*domain.ServiceOrder, error) {
	updateCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(updateCtx,
		bson.M{"_id": serviceID},
		bson.M{"$set": bson.M{"status": string(domain.OrderCompleted), "completed_at": at.UTC()}},
	)
	if err != nil {
		return nil, fmt.Errorf("complete service order: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrServiceOrderNotFound
	}
	return r.Get(ctx, serviceID)
}

func (r *ServiceOrderRepository) Count(ctx context.Context, f ports.OrderFilter) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, orderMatch(f))
	if err != nil {
		return 0, fmt.Errorf("count service orders: %w", err)
	}
	return n, nil
}
