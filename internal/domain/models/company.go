// internal/domain/models/company.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Company training states.
const (
	TrainingInProgress = "in_progress"
	TrainingCompleted  = "completed"
	TrainingFailed     = "failed"
)

// Company is the external-facing record behind the support chatbot widget.
// CompanyID is caller-assigned and unique.
//
// DocumentContext is a denormalized copy of the currently active context
// version, kept for fallback reads: historical companies predate the
// versioned context collection. ContextVersion is the pointer the
// compare-and-swap update path advances; it always trails or equals the
// highest version in company_contexts.
type Company struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CompanyID       string             `bson:"company_id" json:"company_id"`
	Name            string             `bson:"name" json:"name"`
	NameCI          string             `bson:"name_ci" json:"-"`
	DocumentContext string             `bson:"document_context" json:"document_context"`
	ChatbotURL      string             `bson:"chatbot_url" json:"chatbot_url"`
	TrainingStatus  string             `bson:"training_status" json:"training_status"` // in_progress | completed | failed
	ContextVersion  int64              `bson:"context_version" json:"context_version"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
}

// CompanyContext is one version of a company's training context. For any
// company at most one version is active once an update has completed, and
// version numbers start at 1 and never repeat.
type CompanyContext struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CompanyID string             `bson:"company_id" json:"company_id"`
	Text      string             `bson:"text" json:"text"`
	Version   int64              `bson:"version" json:"version"`
	IsActive  bool               `bson:"is_active" json:"is_active"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}
