// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/tessergate/chatforge/internal/app/system/plans"
	"github.com/tessergate/chatforge/internal/app/system/status"
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

var ErrDuplicateEmail = errors.New("an account with this email already exists")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email. Returns
// mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email_ci": text.Fold(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user. The email must be unique (case-folded); the
// plan starts at free unless the caller set one.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	now := time.Now().UTC()
	u.ID = primitive.NewObjectID()
	u.FullNameCI = text.Fold(u.FullName)
	u.EmailCI = text.Fold(u.Email)
	if u.Plan == "" {
		u.Plan = plans.Free
	}
	if u.Status == "" {
		u.Status = status.Active
	}
	u.CreatedAt = now
	u.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// UpdateProfile changes the user's display name.
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, fullName string) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"full_name":    fullName,
		"full_name_ci": text.Fold(fullName),
		"updated_at":   time.Now().UTC(),
	}})
	return err
}

// UpdatePassword replaces the stored credential hash.
func (s *Store) UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"password_hash": passwordHash,
		"updated_at":    time.Now().UTC(),
	}})
	return err
}

// UpdatePlan sets the user's plan attribute. The subscription record is the
// billing source of truth; this mirror keeps auth checks cheap.
func (s *Store) UpdatePlan(ctx context.Context, id primitive.ObjectID, plan string) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"plan":       plan,
		"updated_at": time.Now().UTC(),
	}})
	return err
}

// SetTeam points the user's team mirror at teamID.
func (s *Store) SetTeam(ctx context.Context, id primitive.ObjectID, teamID primitive.ObjectID) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"team_id":    teamID,
		"updated_at": time.Now().UTC(),
	}})
	return err
}

// ClearTeam removes the team mirror from one user, but only when the mirror
// still points at teamID. A mirror pointing at another team is left alone.
func (s *Store) ClearTeam(ctx context.Context, id, teamID primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id, "team_id": teamID}, bson.M{
		"$unset": bson.M{"team_id": ""},
		"$set":   bson.M{"updated_at": time.Now().UTC()},
	})
	return err
}

// ClearTeamForAll removes the team mirror from every member of a disbanded
// team. Returns the number of users touched.
func (s *Store) ClearTeamForAll(ctx context.Context, teamID primitive.ObjectID) (int64, error) {
	res, err := s.c.UpdateMany(ctx, bson.M{"team_id": teamID}, bson.M{
		"$unset": bson.M{"team_id": ""},
		"$set":   bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// SetAPIKey stores the hashed key and its clear prefix, replacing any
// previous key.
func (s *Store) SetAPIKey(ctx context.Context, id primitive.ObjectID, keyHash, keyPrefix string) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"api_key_hash":   keyHash,
		"api_key_prefix": keyPrefix,
		"updated_at":     time.Now().UTC(),
	}})
	return err
}

// GetByAPIKeyPrefix returns the users whose stored key shares the clear
// prefix. Callers must still verify the full key against the hash.
func (s *Store) GetByAPIKeyPrefix(ctx context.Context, prefix string) ([]models.User, error) {
	cur, err := s.c.Find(ctx, bson.M{"api_key_prefix": prefix})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}
