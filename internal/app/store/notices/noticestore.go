// internal/app/store/notices/noticestore.go
package noticestore

import (
	"context"
	"errors"
	"time"

	"github.com/noticehub/noticehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var ErrValidation = errors.New("notice is missing required fields")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("notices")}
}

// Create inserts a notice. The caller has already reserved quota for it;
// if the insert fails the caller releases the reservation.
func (s *Store) Create(ctx context.Context, n models.Notice) (models.Notice, error) {
	if n.OrgID.IsZero() || n.GroupID == "" || n.Title == "" || n.Description == "" {
		return models.Notice{}, ErrValidation
	}
	n.ID = primitive.NewObjectID()
	n.Views = 0
	n.CreatedAt = time.Now().UTC()
	_, err := s.c.InsertOne(ctx, n)
	if err != nil {
		return models.Notice{}, err
	}
	return n, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Notice, error) {
	var n models.Notice
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&n)
	if err != nil {
		return models.Notice{}, err
	}
	return n, nil
}

// ListByOrg returns every notice the organization has published, newest
// first.
func (s *Store) ListByOrg(ctx context.Context, orgID primitive.ObjectID) ([]models.Notice, error) {
	return s.find(ctx, bson.M{"org_id": orgID})
}

// ListByGroup returns the notices for one group identifier, newest first.
// This is the anonymous viewer feed.
func (s *Store) ListByGroup(ctx context.Context, groupID string) ([]models.Notice, error) {
	return s.find(ctx, bson.M{"group_id": groupID})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Notice, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Notice
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// IncrementViews bumps the view counter with an atomic $inc, so lost
// updates under concurrent readers are impossible.
func (s *Store) IncrementViews(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$inc": bson.M{"views": 1}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Update modifies a notice's editable fields. The org_id in the filter
// scopes the write to the calling tenant.
func (s *Store) Update(ctx context.Context, id, orgID primitive.ObjectID, set bson.M) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "org_id": orgID},
		bson.M{"$set": set},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes a notice owned by the organization. Returns the number of
// documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id, orgID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "org_id": orgID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// CountByOrgSince counts the organization's notices created at or after
// the given instant. Quota reconciliation calls this with the start of the
// current month.
func (s *Store) CountByOrgSince(ctx context.Context, orgID primitive.ObjectID, since time.Time) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{
		"org_id":     orgID,
		"created_at": bson.M{"$gte": since},
	})
}

// TotalViews sums view counters across all of the organization's notices.
func (s *Store) TotalViews(ctx context.Context, orgID primitive.ObjectID) (int64, error) {
	cur, err := s.c.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"org_id": orgID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$views"},
		}}},
	})
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		Total int64 `bson:"total"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}
