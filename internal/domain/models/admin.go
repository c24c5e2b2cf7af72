// internal/domain/models/admin.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Admin is the identity record for an organization owner. Its _id doubles
// as the organization _id: the signed-in admin is authorized for exactly
// the Organization row sharing this id, and nothing else.
//
// AuthMethod is "password" or "google". PasswordHash is only set for
// password accounts (bcrypt).
type Admin struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	Email        string             `bson:"email" json:"email"`
	EmailCI      string             `bson:"email_ci" json:"-"`
	AuthMethod   string             `bson:"auth_method" json:"auth_method"`
	PasswordHash string             `bson:"password_hash,omitempty" json:"-"`

	// GoogleSub is the stable subject id from Google for SSO accounts.
	GoogleSub string `bson:"google_sub,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
