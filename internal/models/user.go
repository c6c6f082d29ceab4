package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionToken is one currently-valid session for a user. The token string
// is a signed JWT; validity additionally requires membership in the owning
// user's Tokens slice, so revocation is just removal from the slice.
type SessionToken struct {
	Token string `bson:"token" json:"-"`
}

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`

	Name  string `bson:"name" json:"name"`
	Email string `bson:"email" json:"email"`
	Age   int    `bson:"age" json:"age"`

	// Argon2id hash, never the plaintext. Excluded from every response.
	Password string `bson:"password" json:"-"`

	// Normalized 250x250 PNG, or nil when unset. Served only through the
	// avatar endpoint, never inlined into user JSON.
	Avatar []byte `bson:"avatar,omitempty" json:"-"`

	Tokens []SessionToken `bson:"tokens" json:"-"`
}

// HasToken reports whether raw is one of the user's active session tokens.
func (u *User) HasToken(raw string) bool {
	for _, t := range u.Tokens {
		if t.Token == raw {
			return true
		}
	}
	return false
}
