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

type RoleRepository struct {
	col *mongo.Collection
}

func NewRoleRepository(db *mongo.Database) *RoleRepository {
	return &RoleRepository{col: db.Collection(colRoles)}
}

type roleDoc struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Kind      string    `bson:"kind"`
	Protected bool      `bson:"protected"`
	CreatedAt time.Time `bson:"created_at"`
}

func newRoleDoc(r *domain.Role) roleDoc {
	return roleDoc{
		ID:        r.RoleID,
		Name:      r.Name,
		Kind:      string(r.Kind),
		Protected: r.Protected,
		CreatedAt: r.CreatedAt,
	}
}

func (d roleDoc) toDomain() domain.Role {
	return domain.Role{
		RoleID:    d.ID,
		Name:      d.Name,
		Kind:      domain.RoleKind(d.Kind),
		Protected: d.Protected,
		CreatedAt: d.CreatedAt,
	}
}

func (r *RoleRepository) List(ctx context.Context) ([]domain.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find roles: %w", err)
	}
	docs, err := decodeAll[roleDoc](ctx, cur)
	if err != nil {
		return nil, fmt.Errorf("decode roles: %w", err)
	}
	out := make([]domain.Role, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *RoleRepository) Get(ctx context.Context, roleID string) (*domain.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d roleDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": roleID}).Decode(&d); err != nil {
		return nil, translate(err, domain.ErrRoleNotFound)
	}
	role := d.toDomain()
	return &role, nil
}

func (r *RoleRepository) Create(ctx context.Context, role *domain.Role) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, newRoleDoc(role)); err != nil {
		return translate(err, domain.ErrRoleNotFound)
	}
	return nil
}

func (r *RoleRepository) Update(ctx context.Context, role *domain.Role) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": role.RoleID}, newRoleDoc(role))
	if err != nil {
		return translate(err, domain.ErrRoleNotFound)
	}
	if res.MatchedCount == 0 {
		return domain.ErrRoleNotFound
	}
	return nil
}

func (r *RoleRepository) Delete(ctx context.Context, roleID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": roleID})
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrRoleNotFound
	}
	return nil
}
