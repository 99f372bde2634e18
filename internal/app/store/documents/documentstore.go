// internal/app/store/documents/documentstore.go
package documentstore

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
	return &Store{c: db.Collection("documents")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Document, error) {
	var d models.Document
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return models.Document{}, err
	}
	return d, nil
}

func (s *Store) Create(ctx context.Context, d models.Document) (models.Document, error) {
	now := time.Now().UTC()
	d.ID = primitive.NewObjectID()
	d.TitleCI = text.Fold(d.Title)
	d.SizeBytes = int64(len(d.Content))
	d.CreatedAt = now
	d.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, d); err != nil {
		return models.Document{}, err
	}
	return d, nil
}

// Update replaces title and content. Ownership is checked by the caller.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, title, content string) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"title":      title,
		"title_ci":   text.Fold(title),
		"content":    content,
		"size_bytes": int64(len(content)),
		"updated_at": time.Now().UTC(),
	}})
	return err
}

// SetTeam shares the document with a team, or unshares when teamID is nil.
func (s *Store) SetTeam(ctx context.Context, id primitive.ObjectID, teamID *primitive.ObjectID) error {
	update := bson.M{"$set": bson.M{"updated_at": time.Now().UTC()}}
	if teamID == nil {
		update["$unset"] = bson.M{"team_id": ""}
	} else {
		update["$set"].(bson.M)["team_id"] = *teamID
	}
	_, err := s.c.UpdateByID(ctx, id, update)
	return err
}

func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListVisible returns documents the user owns plus, when teamID is set,
// documents shared with that team.
func (s *Store) ListVisible(ctx context.Context, userID primitive.ObjectID, teamID *primitive.ObjectID) ([]models.Document, error) {
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
	var docs []models.Document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// CountByOwner returns the number of documents a user owns.
func (s *Store) CountByOwner(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"owner_id": userID})
}

// StorageByOwner sums the stored bytes across a user's documents.
func (s *Store) StorageByOwner(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	cur, err := s.c.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"owner_id": userID}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$size_bytes"}}}},
	})
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)
	var rows []struct {
		Total int64 `bson:"total"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}
