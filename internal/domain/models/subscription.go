// internal/domain/models/subscription.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Subscription states.
const (
	SubActive   = "active"
	SubTrialing = "trialing"
	SubCanceled = "canceled"
)

// PlanLimits is the feature-limit snapshot embedded on a subscription at the
// time it is created or changed. The authoritative table lives in
// system/plans; the snapshot keeps historical records stable when the table
// changes.
type PlanLimits struct {
	MaxDocuments   int   `bson:"max_documents" json:"max_documents"`
	MaxModels      int   `bson:"max_models" json:"max_models"`
	MaxStorageByte int64 `bson:"max_storage_bytes" json:"max_storage_bytes"`
	MaxTeamMembers int   `bson:"max_team_members" json:"max_team_members"`
	APIAccess      bool  `bson:"api_access" json:"api_access"`
}

// Subscription is the single billing record for a user. Plan changes update
// it in place so a user can never hold two active records at once.
type Subscription struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Plan      string             `bson:"plan" json:"plan"`
	Status    string             `bson:"status" json:"status"` // active | trialing | canceled
	Limits    PlanLimits         `bson:"limits" json:"limits"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}
