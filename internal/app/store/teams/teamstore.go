// internal/app/store/teams/teamstore.go
package teamstore

import (
	"context"
	"errors"
	"time"

	"github.com/tessergate/chatforge/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrDuplicateTeamName = errors.New("a team with this name already exists")
	ErrAlreadyMember     = errors.New("user is already a member of this team")
	ErrMemberNotFound    = errors.New("user is not a member of this team")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("teams")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Team, error) {
	var t models.Team
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		return models.Team{}, err
	}
	return t, nil
}

// Create inserts a team whose sole member is the owner.
func (s *Store) Create(ctx context.Context, name string, ownerID primitive.ObjectID) (models.Team, error) {
	now := time.Now().UTC()
	t := models.Team{
		ID:      primitive.NewObjectID(),
		Name:    name,
		NameCI:  text.Fold(name),
		OwnerID: ownerID,
		Members: []models.TeamMember{
			{UserID: ownerID, Role: models.RoleOwner, AddedAt: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.c.InsertOne(ctx, t); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Team{}, ErrDuplicateTeamName
		}
		return models.Team{}, err
	}
	return t, nil
}

// Rename changes the team name.
func (s *Store) Rename(ctx context.Context, id primitive.ObjectID, name string) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"name":       name,
		"name_ci":    text.Fold(name),
		"updated_at": time.Now().UTC(),
	}})
	if wafflemongo.IsDup(err) {
		return ErrDuplicateTeamName
	}
	return err
}

// Delete removes a team. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// AddMember appends a membership entry. The filter keeps the operation
// idempotent under races: a user already present is never pushed twice.
func (s *Store) AddMember(ctx context.Context, id, userID primitive.ObjectID, role string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "members.user_id": bson.M{"$ne": userID}},
		bson.M{
			"$push": bson.M{"members": models.TeamMember{
				UserID:  userID,
				Role:    role,
				AddedAt: time.Now().UTC(),
			}},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrAlreadyMember
	}
	return nil
}

// RemoveMember pulls a non-owner membership entry. The role guard in the
// filter means the owner entry can never be pulled, whatever the caller.
// The filter requires a matching entry so only the $pull, never the
// updated_at touch, decides whether the member existed.
func (s *Store) RemoveMember(ctx context.Context, id, userID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{
			"_id": id,
			"members": bson.M{"$elemMatch": bson.M{
				"user_id": userID,
				"role":    bson.M{"$ne": models.RoleOwner},
			}},
		},
		bson.M{
			"$pull": bson.M{"members": bson.M{
				"user_id": userID,
				"role":    bson.M{"$ne": models.RoleOwner},
			}},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrMemberNotFound
	}
	return nil
}

// SetMemberRole changes one member's role. The owner entry is excluded by
// the filter and admin/member are the only roles assignable this way.
func (s *Store) SetMemberRole(ctx context.Context, id, userID primitive.ObjectID, role string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{
			"_id": id,
			"members": bson.M{"$elemMatch": bson.M{
				"user_id": userID,
				"role":    bson.M{"$ne": models.RoleOwner},
			}},
		},
		bson.M{"$set": bson.M{
			"members.$.role": role,
			"updated_at":     time.Now().UTC(),
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrMemberNotFound
	}
	return nil
}

// ListByOwner returns the teams a user owns.
func (s *Store) ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Team, error) {
	cur, err := s.c.Find(ctx, bson.M{"owner_id": ownerID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var teams []models.Team
	if err := cur.All(ctx, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

// CountMembers returns the membership size of a team.
func (s *Store) CountMembers(ctx context.Context, id primitive.ObjectID) (int, error) {
	t, err := s.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, err
	}
	return len(t.Members), nil
}
