// internal/domain/models/notice.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notice is a published message scoped to one group. OrgName is a
// denormalized snapshot taken at creation time so viewers never need to
// read the organizations collection.
type Notice struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrgID   primitive.ObjectID `bson:"org_id" json:"org_id"`
	OrgName string             `bson:"org_name" json:"org_name"`
	GroupID string             `bson:"group_id" json:"group_id"`

	Title       string `bson:"title" json:"title"`
	Description string `bson:"description" json:"description"`
	Tag         Tag    `bson:"tag" json:"tag"`

	ImageURL string `bson:"image_url,omitempty" json:"image_url,omitempty"`
	PDFURL   string `bson:"pdf_url,omitempty" json:"pdf_url,omitempty"`

	// Views only ever increases, via an atomic $inc.
	Views int64 `bson:"views" json:"views"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
