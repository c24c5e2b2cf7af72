// internal/domain/models/organization.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxGroupsPerOrg caps the embedded groups array. Enforced at the store
// layer with a guarded $push so concurrent adds cannot exceed it.
const MaxGroupsPerOrg = 10

// Organization is a tenant. It shares its _id with the admin identity that
// created it (one organization per admin), and embeds its group catalog.
type Organization struct {
	ID     primitive.ObjectID `bson:"_id" json:"id"`
	Name   string             `bson:"name" json:"name"`
	NameCI string             `bson:"name_ci" json:"-"` // lowercase, diacritics-stripped
	Email  string             `bson:"email" json:"email"`

	// Groups is the embedded group catalog (max MaxGroupsPerOrg).
	Groups []Group `bson:"groups" json:"groups"`

	// Monthly notice quota. QuotaPeriod is the "2006-01" month the counter
	// belongs to; the counter resets when a reservation sees a new period.
	NoticeCount int    `bson:"notice_count" json:"notice_count"`
	QuotaPeriod string `bson:"quota_period,omitempty" json:"quota_period,omitempty"`

	// Machine ingestion credential. APIKey is only honored when APIAccess
	// is true.
	APIKey    string `bson:"api_key,omitempty" json:"-"`
	APIAccess bool   `bson:"api_access" json:"api_access"`

	// Presentation overrides surfaced to viewers.
	CustomBranding bool   `bson:"custom_branding" json:"custom_branding"`
	ThemeColors    string `bson:"theme_colors,omitempty" json:"theme_colors,omitempty"`
	OrgLogo        string `bson:"org_logo,omitempty" json:"org_logo,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Group is a named, identifier-addressable audience scope. The ID is the
// shareable capability token viewers present; it is immutable once created
// and stays readable on existing notices even after the group is removed.
type Group struct {
	ID        string    `bson:"id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// HasGroup reports whether the organization's catalog contains the group id.
func (o *Organization) HasGroup(groupID string) bool {
	for _, g := range o.Groups {
		if g.ID == groupID {
			return true
		}
	}
	return false
}
