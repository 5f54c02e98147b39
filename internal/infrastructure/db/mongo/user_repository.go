package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/aquaflow/servicecrm/internal/core/domain"
)

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(colUsers)}
}

type userDoc struct {
	ID           string    `bson:"_id"`
	Email        string    `bson:"email"`
	FullName     string    `bson:"full_name"`
	Phone        string    `bson:"phone,omitempty"`
	RoleID       string    `bson:"role_id"`
	IsActive     bool      `bson:"is_active"`
	PasswordHash string    `bson:"password_hash"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

type userRow struct {
	Stored userDoc  `bson:",inline"`
	Role   *roleDoc `bson:"role"`
}

func newUserDoc(u *domain.User) userDoc {
	return userDoc{
		ID:           u.UserID,
		Email:        u.Email,
		FullName:     u.FullName,
		Phone:        u.Phone,
		RoleID:       u.RoleID,
		IsActive:     u.IsActive,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (r userRow) toDomain() domain.User {
	u := domain.User{
		UserID:       r.Stored.ID,
		Email:        r.Stored.Email,
		FullName:     r.Stored.FullName,
		Phone:        r.Stored.Phone,
		RoleID:       r.Stored.RoleID,
		IsActive:     r.Stored.IsActive,
		PasswordHash: r.Stored.PasswordHash,
		CreatedAt:    r.Stored.CreatedAt,
		UpdatedAt:    r.Stored.UpdatedAt,
	}
	if r.Role != nil {
		role := r.Role.toDomain()
		u.Role = &role
	}
	return u
}

func (r *UserRepository) find(ctx context.Context, match bson.M) ([]domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		lookupName(colRoles, "role_id", "_role"),
		{{Key: "$addFields", Value: bson.M{"role": bson.M{"$first": "$_role"}}}},
		{{Key: "$project", Value: bson.M{"_role": 0}}},
		{{Key: "$sort", Value: bson.D{{Key: "full_name", Value: 1}, {Key: "_id", Value: 1}}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate users: %w", err)
	}
	rows, err := decodeAll[userRow](ctx, cur)
	if err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	out := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *UserRepository) one(ctx context.Context, match bson.M) (*domain.User, error) {
	users, err := r.find(ctx, match)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, domain.ErrUserNotFound
	}
	return &users[0], nil
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	return r.find(ctx, bson.M{})
}

func (r *UserRepository) Get(ctx context.Context, userID string) (*domain.User, error) {
	return r.one(ctx, bson.M{"_id": userID})
}

// FindByEmail expects an already normalized address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.one(ctx, bson.M{"email": email})
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, newUserDoc(u)); err != nil {
		return translate(err, domain.ErrUserNotFound)
	}
	return nil
}

func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": u.UserID}, newUserDoc(u))
	if err != nil {
		return translate(err, domain.ErrUserNotFound)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": userID})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	return r.count(ctx, bson.M{})
}

func (r *UserRepository) CountByRole(ctx context.Context, roleID string) (int64, error) {
	return r.count(ctx, bson.M{"role_id": roleID})
}

func (r *UserRepository) count(ctx context.Context, match bson.M) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, match)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}
