// internal/domain/models/document.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Document is an uploaded text document owned by one user. When TeamID is
// set the owner's team may read it; mutation stays with the owner.
type Document struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	OwnerID     primitive.ObjectID  `bson:"owner_id" json:"owner_id"`
	TeamID      *primitive.ObjectID `bson:"team_id,omitempty" json:"team_id,omitempty"`
	Title       string              `bson:"title" json:"title"`
	TitleCI     string              `bson:"title_ci" json:"-"`
	Content     string              `bson:"content" json:"content"`
	ContentType string              `bson:"content_type,omitempty" json:"content_type,omitempty"`
	SizeBytes   int64               `bson:"size_bytes" json:"size_bytes"`
	CreatedAt   time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time           `bson:"updated_at" json:"updated_at"`
}
