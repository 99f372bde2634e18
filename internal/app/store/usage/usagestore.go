// internal/app/store/usage/usagestore.go

// Package usagestore appends billable-action facts. The ledger is
// append-only; there is deliberately no update or delete method.
package usagestore

import (
	"context"
	"time"

	"github.com/tessergate/chatforge/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("usage_records")}
}

// Append records one billable fact.
func (s *Store) Append(ctx context.Context, rec models.UsageRecord) (models.UsageRecord, error) {
	rec.ID = primitive.NewObjectID()
	rec.CreatedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, rec); err != nil {
		return models.UsageRecord{}, err
	}
	return rec, nil
}

// ListByUser returns a user's records, newest first, capped at limit.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.UsageRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.UsageRecord
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountByUserAndKind supports limit checks and reporting.
func (s *Store) CountByUserAndKind(ctx context.Context, userID primitive.ObjectID, kind string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"user_id": userID, "kind": kind})
}
