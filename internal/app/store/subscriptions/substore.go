// internal/app/store/subscriptions/substore.go
package substore

import (
	"context"
	"time"

	"github.com/tessergate/chatforge/internal/app/system/plans"
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
	return &Store{c: db.Collection("subscriptions")}
}

// GetCurrent returns the user's active or trialing record, or
// mongo.ErrNoDocuments when the user has none (free tier).
func (s *Store) GetCurrent(ctx context.Context, userID primitive.ObjectID) (models.Subscription, error) {
	var sub models.Subscription
	err := s.c.FindOne(ctx, bson.M{
		"user_id": userID,
		"status":  bson.M{"$in": bson.A{models.SubActive, models.SubTrialing}},
	}).Decode(&sub)
	if err != nil {
		return models.Subscription{}, err
	}
	return sub, nil
}

// Set upserts the single subscription record for a user, snapshotting the
// plan limits. Updating in place is what keeps a user from ever holding two
// concurrent active records.
func (s *Store) Set(ctx context.Context, userID primitive.ObjectID, plan, subStatus string) (models.Subscription, error) {
	now := time.Now().UTC()
	limits := plans.Limits(plan)
	var sub models.Subscription
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"user_id": userID},
		bson.M{
			"$set": bson.M{
				"plan":       plan,
				"status":     subStatus,
				"limits":     limits,
				"updated_at": now,
			},
			"$setOnInsert": bson.M{
				"_id":        primitive.NewObjectID(),
				"user_id":    userID,
				"created_at": now,
			},
		},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&sub)
	if err != nil {
		return models.Subscription{}, err
	}
	return sub, nil
}

// Cancel transitions the user's record to canceled. Returns false when the
// user has no record at all.
func (s *Store) Cancel(ctx context.Context, userID primitive.ObjectID) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$set": bson.M{"status": models.SubCanceled, "updated_at": time.Now().UTC()}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}
