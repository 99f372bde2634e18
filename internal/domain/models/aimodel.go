// internal/domain/models/aimodel.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AI model training states.
const (
	ModelDraft     = "draft"
	ModelTraining  = "training"
	ModelCompleted = "completed"
	ModelFailed    = "failed"
)

// AIModel is a trainable model record. Training is simulated: a background
// task advances Progress until the status flips to completed.
type AIModel struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	OwnerID     primitive.ObjectID   `bson:"owner_id" json:"owner_id"`
	TeamID      *primitive.ObjectID  `bson:"team_id,omitempty" json:"team_id,omitempty"`
	Name        string               `bson:"name" json:"name"`
	NameCI      string               `bson:"name_ci" json:"-"`
	Description string               `bson:"description,omitempty" json:"description,omitempty"`
	Status      string               `bson:"status" json:"status"` // draft | training | completed | failed
	Progress    int                  `bson:"progress" json:"progress"`
	DocumentIDs []primitive.ObjectID `bson:"document_ids,omitempty" json:"document_ids,omitempty"`
	TrainedAt   *time.Time           `bson:"trained_at,omitempty" json:"trained_at,omitempty"`
	CreatedAt   time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time            `bson:"updated_at" json:"updated_at"`
}
