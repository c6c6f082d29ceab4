package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Task struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`

	Description string `bson:"description" json:"description"`
	Completed   bool   `bson:"completed" json:"completed"`

	// Owner is set from the authenticated user at creation and never
	// changes. Every task query filters on it.
	Owner primitive.ObjectID `bson:"owner" json:"owner"`
}
