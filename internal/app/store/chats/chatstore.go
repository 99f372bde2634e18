// internal/app/store/chats/chatstore.go
package chatstore

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
	return &Store{c: db.Collection("chat_sessions")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.ChatSession, error) {
	var cs models.ChatSession
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&cs); err != nil {
		return models.ChatSession{}, err
	}
	return cs, nil
}

func (s *Store) Create(ctx context.Context, cs models.ChatSession) (models.ChatSession, error) {
	now := time.Now().UTC()
	cs.ID = primitive.NewObjectID()
	if cs.Status == "" {
		cs.Status = models.ChatIdle
	}
	if cs.Messages == nil {
		cs.Messages = []models.ChatMessage{}
	}
	cs.CreatedAt = now
	cs.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, cs); err != nil {
		return models.ChatSession{}, err
	}
	return cs, nil
}

// AppendUserMessage adds the caller's turn and flips the session to
// awaiting_reply. Returns the stored message.
func (s *Store) AppendUserMessage(ctx context.Context, id primitive.ObjectID, content string) (models.ChatMessage, error) {
	msg := models.ChatMessage{
		ID:        primitive.NewObjectID(),
		Role:      models.ChatRoleUser,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.c.UpdateByID(ctx, id, bson.M{
		"$push": bson.M{"messages": msg},
		"$set":  bson.M{"status": models.ChatAwaitingReply, "updated_at": msg.CreatedAt},
	})
	if err != nil {
		return models.ChatMessage{}, err
	}
	return msg, nil
}

// AppendAssistantReply adds the mocked responder's turn and returns the
// session to idle.
func (s *Store) AppendAssistantReply(ctx context.Context, id primitive.ObjectID, content string) error {
	msg := models.ChatMessage{
		ID:        primitive.NewObjectID(),
		Role:      models.ChatRoleAssistant,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.c.UpdateByID(ctx, id, bson.M{
		"$push": bson.M{"messages": msg},
		"$set":  bson.M{"status": models.ChatIdle, "updated_at": msg.CreatedAt},
	})
	return err
}

func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListVisible returns sessions owned by the user or shared with their team,
// newest first.
func (s *Store) ListVisible(ctx context.Context, userID primitive.ObjectID, teamID *primitive.ObjectID) ([]models.ChatSession, error) {
	filter := bson.M{"owner_id": userID}
	if teamID != nil {
		filter = bson.M{"$or": bson.A{
			bson.M{"owner_id": userID},
			bson.M{"team_id": *teamID},
		}}
	}
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.ChatSession
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
