// internal/domain/models/chat.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Chat message roles and session states.
const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"

	ChatIdle          = "idle"
	ChatAwaitingReply = "awaiting_reply"
)

// ChatMessage is one turn in a chat session.
type ChatMessage struct {
	ID        primitive.ObjectID `bson:"id" json:"id"`
	Role      string             `bson:"role" json:"role"` // user | assistant
	Content   string             `bson:"content" json:"content"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// ChatSession is a conversation against a trained model. Posting a message
// flips Status to awaiting_reply; the mocked responder appends the assistant
// turn later and flips it back to idle.
type ChatSession struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	OwnerID   primitive.ObjectID  `bson:"owner_id" json:"owner_id"`
	TeamID    *primitive.ObjectID `bson:"team_id,omitempty" json:"team_id,omitempty"`
	ModelID   primitive.ObjectID  `bson:"model_id" json:"model_id"`
	Title     string              `bson:"title" json:"title"`
	Status    string              `bson:"status" json:"status"` // idle | awaiting_reply
	Messages  []ChatMessage       `bson:"messages" json:"messages"`
	CreatedAt time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time           `bson:"updated_at" json:"updated_at"`
}
