// internal/app/store/aimodels/modelstore.go
package modelstore

import (
	"context"
	"time"

	"github.com/tessergate/chatforge/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("ai_models")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.AIModel, error) {
	var m models.AIModel
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		return models.AIModel{}, err
	}
	return m, nil
}

func (s *Store) Create(ctx context.Context, m models.AIModel) (models.AIModel, error) {
	now := time.Now().UTC()
	m.ID = primitive.NewObjectID()
	m.NameCI = text.Fold(m.Name)
	if m.Status == "" {
		m.Status = models.ModelDraft
	}
	m.CreatedAt = now
	m.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		return models.AIModel{}, err
	}
	return m, nil
}

// UpdateInfo changes name/description on a draft or trained model.
func (s *Store) UpdateInfo(ctx context.Context, id primitive.ObjectID, name, desc string) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"name":        name,
		"name_ci":     text.Fold(name),
		"description": desc,
		"updated_at":  time.Now().UTC(),
	}})
	return err
}

// StartTraining flips the model into the training state. The filter only
// matches models not already training, so a double train request is a no-op
// for the second caller.
func (s *Store) StartTraining(ctx context.Context, id primitive.ObjectID, docIDs []primitive.ObjectID) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": bson.M{"$ne": models.ModelTraining}},
		bson.M{"$set": bson.M{
			"status":       models.ModelTraining,
			"progress":     0,
			"document_ids": docIDs,
			"updated_at":   time.Now().UTC(),
		}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// SetProgress advances the simulated training progress.
func (s *Store) SetProgress(ctx context.Context, id primitive.ObjectID, progress int) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.ModelTraining},
		bson.M{"$set": bson.M{"progress": progress, "updated_at": time.Now().UTC()}})
	return err
}

// FinishTraining marks the run completed or failed.
func (s *Store) FinishTraining(ctx context.Context, id primitive.ObjectID, finalStatus string) error {
	now := time.Now().UTC()
	set := bson.M{
		"status":     finalStatus,
		"updated_at": now,
	}
	if finalStatus == models.ModelCompleted {
		set["progress"] = 100
		set["trained_at"] = now
	}
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id, "status": models.ModelTraining}, bson.M{"$set": set})
	return err
}

func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListVisible returns models owned by the user or shared with their team.
func (s *Store) ListVisible(ctx context.Context, userID primitive.ObjectID, teamID *primitive.ObjectID) ([]models.AIModel, error) {
	filter := bson.M{"owner_id": userID}
	if teamID != nil {
		filter = bson.M{"$or": bson.A{
			bson.M{"owner_id": userID},
			bson.M{"team_id": *teamID},
		}}
	}
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.AIModel
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountByOwner returns the number of models a user owns.
func (s *Store) CountByOwner(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"owner_id": userID})
}
