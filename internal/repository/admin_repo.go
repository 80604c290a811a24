package repository

import (
	"context"
	"errors"
	"time"

	"feedback-backend/internal/database"
	"feedback-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type AdminRepo struct {
	collection *mongo.Collection
}

func NewAdminRepo(db *mongo.Database) *AdminRepo {
	return &AdminRepo{
		collection: db.Collection(database.AdminCollection),
	}
}

func (r *AdminRepo) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var admin models.Admin
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&admin)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &admin, nil
}

// FindByID looks an admin up by the hex id carried in session tokens.
func (r *AdminRepo) FindByID(ctx context.Context, id string) (*models.Admin, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	var admin models.Admin
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&admin)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &admin, nil
}

// CreateIfAbsent inserts the admin unless one with the same email exists.
// It reports whether a new record was written.
func (r *AdminRepo) CreateIfAbsent(ctx context.Context, admin *models.Admin) (bool, error) {
	now := time.Now().UTC()
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"email": admin.Email},
		bson.M{"$setOnInsert": bson.M{
			"email":      admin.Email,
			"password":   admin.Password,
			"name":       admin.Name,
			"created_at": now,
			"updated_at": now,
		}},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return false, err
	}
	return result.UpsertedCount == 1, nil
}

// UpsertPassword rotates the password hash, creating the admin if missing.
func (r *AdminRepo) UpsertPassword(ctx context.Context, email, name, passwordHash string) error {
	now := time.Now().UTC()
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{
			"$set": bson.M{
				"password":   passwordHash,
				"updated_at": now,
			},
			"$setOnInsert": bson.M{
				"name":       name,
				"created_at": now,
			},
		},
		options.UpdateOne().SetUpsert(true),
	)
	return err
}

// EnsureIndexes creates necessary indexes for the admins collection
func (r *AdminRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
