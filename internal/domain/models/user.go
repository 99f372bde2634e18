// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Account types.
const (
	AccountIndividual = "individual"
	AccountBusiness   = "business"
)

// User represents an account holder. Individual accounts own their resources
// directly; business accounts may additionally create a team and share
// resources with it.
//
// NOTE:
//   - TeamID mirrors the user's membership entry in the teams collection so
//     that team-read checks do not require a membership lookup per request.
//   - API keys are stored hashed; only the first eight characters are kept
//     in clear for lookup.
type User struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	FullName     string              `bson:"full_name" json:"full_name"`
	FullNameCI   string              `bson:"full_name_ci" json:"-"` // lowercase, diacritics-stripped
	Email        string              `bson:"email" json:"email"`
	EmailCI      string              `bson:"email_ci" json:"-"`
	PasswordHash string              `bson:"password_hash" json:"-"`
	AccountType  string              `bson:"account_type" json:"account_type"` // individual | business
	Plan         string              `bson:"plan" json:"plan"`                 // free | starter | pro | enterprise
	TeamID       *primitive.ObjectID `bson:"team_id,omitempty" json:"team_id,omitempty"`
	APIKeyHash   string              `bson:"api_key_hash,omitempty" json:"-"`
	APIKeyPrefix string              `bson:"api_key_prefix,omitempty" json:"-"`
	Status       string              `bson:"status,omitempty" json:"status,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
