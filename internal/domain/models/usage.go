// internal/domain/models/usage.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Usage record kinds.
const (
	UsageDocumentUpload = "document_upload"
	UsageModelTraining  = "model_training"
	UsageChatMessage    = "chat_message"
)

// UsageRecord is one immutable billable fact. Records are only ever
// inserted; there is no update path.
type UsageRecord struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID  `bson:"user_id" json:"user_id"`
	TeamID     *primitive.ObjectID `bson:"team_id,omitempty" json:"team_id,omitempty"`
	Kind       string              `bson:"kind" json:"kind"`
	ResourceID primitive.ObjectID  `bson:"resource_id" json:"resource_id"`
	Metrics    map[string]int64    `bson:"metrics,omitempty" json:"metrics,omitempty"`
	CreatedAt  time.Time           `bson:"created_at" json:"created_at"`
}
