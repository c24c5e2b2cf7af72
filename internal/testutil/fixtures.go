package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"github.com/noticehub/noticehub/internal/app/system/groupid"
	"github.com/noticehub/noticehub/internal/app/system/quota"
	"github.com/noticehub/noticehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateOrganization creates a test organization with the given name.
// Returns the created organization with its generated ID.
func (f *Fixtures) CreateOrganization(ctx context.Context, name string) models.Organization {
	f.t.Helper()

	now := time.Now().UTC()
	org := models.Organization{
		ID:          primitive.NewObjectID(),
		Name:        name,
		NameCI:      text.Fold(name),
		Email:       "owner@example.com",
		Groups:      []models.Group{},
		QuotaPeriod: quota.Period(now),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := f.db.Collection("organizations").InsertOne(ctx, org)
	if err != nil {
		f.t.Fatalf("failed to create test organization: %v", err)
	}

	return org
}

// CreateAdmin creates a password-auth admin identity sharing the given
// organization's ID.
func (f *Fixtures) CreateAdmin(ctx context.Context, orgID primitive.ObjectID, email, passwordHash string) models.Admin {
	f.t.Helper()

	now := time.Now().UTC()
	admin := models.Admin{
		ID:           orgID,
		Email:        email,
		EmailCI:      text.Fold(email),
		AuthMethod:   "password",
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := f.db.Collection("admins").InsertOne(ctx, admin)
	if err != nil {
		f.t.Fatalf("failed to create test admin: %v", err)
	}

	return admin
}

// AddGroup appends a group with a freshly generated identifier to the
// organization's catalog and returns it.
func (f *Fixtures) AddGroup(ctx context.Context, org models.Organization, name string) models.Group {
	f.t.Helper()

	id, err := groupid.New(org.ID.Hex(), time.Now())
	if err != nil {
		f.t.Fatalf("failed to generate group id: %v", err)
	}
	group := models.Group{
		ID:        id,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	_, err = f.db.Collection("organizations").UpdateByID(ctx, org.ID,
		map[string]any{"$push": map[string]any{"groups": group}})
	if err != nil {
		f.t.Fatalf("failed to add test group: %v", err)
	}

	return group
}

// CreateNotice inserts a notice for the given org and group.
func (f *Fixtures) CreateNotice(ctx context.Context, org models.Organization, groupID, title string) models.Notice {
	f.t.Helper()

	n := models.Notice{
		ID:          primitive.NewObjectID(),
		OrgID:       org.ID,
		OrgName:     org.Name,
		GroupID:     groupID,
		Title:       title,
		Description: "Test notice body",
		Tag:         models.TagGeneral,
		CreatedAt:   time.Now().UTC(),
	}

	_, err := f.db.Collection("notices").InsertOne(ctx, n)
	if err != nil {
		f.t.Fatalf("failed to create test notice: %v", err)
	}

	return n
}
