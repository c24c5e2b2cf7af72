// internal/app/store/admins/adminstore.go
package adminstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/noticehub/noticehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

var ErrDuplicateEmail = errors.New("an account with this email already exists")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("admins")}
}

// Create inserts a new admin identity. The caller may pre-assign the ID
// (signup assigns one id shared by the admin and its organization);
// a zero ID gets a fresh ObjectID.
func (s *Store) Create(ctx context.Context, admin models.Admin) (models.Admin, error) {
	now := time.Now().UTC()
	if admin.ID.IsZero() {
		admin.ID = primitive.NewObjectID()
	}
	admin.EmailCI = text.Fold(admin.Email)
	admin.CreatedAt = now
	admin.UpdatedAt = now
	_, err := s.c.InsertOne(ctx, admin)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Admin{}, ErrDuplicateEmail
		}
		return models.Admin{}, err
	}
	return admin, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Admin, error) {
	var admin models.Admin
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&admin)
	if err != nil {
		return models.Admin{}, err
	}
	return admin, nil
}

// GetByEmailCI looks up an admin by folded email.
func (s *Store) GetByEmailCI(ctx context.Context, emailCI string) (models.Admin, error) {
	var admin models.Admin
	err := s.c.FindOne(ctx, bson.M{"email_ci": emailCI}).Decode(&admin)
	if err != nil {
		return models.Admin{}, err
	}
	return admin, nil
}

// GetByGoogleSub looks up an admin by the Google subject id set during SSO.
func (s *Store) GetByGoogleSub(ctx context.Context, sub string) (models.Admin, error) {
	var admin models.Admin
	err := s.c.FindOne(ctx, bson.M{"google_sub": sub}).Decode(&admin)
	if err != nil {
		return models.Admin{}, err
	}
	return admin, nil
}

// SetGoogleSub links a Google identity to an existing admin account.
func (s *Store) SetGoogleSub(ctx context.Context, id primitive.ObjectID, sub string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"google_sub": sub,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// UpdatePassword replaces the stored bcrypt hash.
func (s *Store) UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"password_hash": hash,
		"updated_at":    time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes an admin by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
