// internal/app/store/organizations/organizationstore.go
package organizationstore

import (
	"context"
	"errors"
	"strconv"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/noticehub/noticehub/internal/app/system/quota"
	"github.com/noticehub/noticehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrDuplicateOrganization = errors.New("an organization with this name already exists")
	ErrDuplicateGroupID      = errors.New("group identifier already in use")
	ErrGroupLimit            = errors.New("organization has reached its group limit")
	ErrGroupNotFound         = errors.New("group not found in organization")
	ErrQuotaExceeded         = errors.New("monthly notice quota exceeded")
)

// maxGroupIndex is the array slot that must be vacant for AddGroup to match.
var maxGroupIndex = strconv.Itoa(models.MaxGroupsPerOrg - 1)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("organizations")}
}

// Create inserts the organization row for a freshly created admin. The
// caller supplies the ID, which is the admin's ID (the pair is created
// together at signup).
func (s *Store) Create(ctx context.Context, org models.Organization) (models.Organization, error) {
	now := time.Now().UTC()
	org.NameCI = text.Fold(org.Name)
	if org.Groups == nil {
		org.Groups = []models.Group{}
	}
	org.QuotaPeriod = quota.Period(now)
	org.CreatedAt = now
	org.UpdatedAt = now
	_, err := s.c.InsertOne(ctx, org)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Organization{}, ErrDuplicateOrganization
		}
		return models.Organization{}, err
	}
	return org, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Organization, error) {
	var org models.Organization
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&org)
	if err != nil {
		return models.Organization{}, err
	}
	return org, nil
}

// GetByAPIKey resolves the organization that owns an ingestion key. Keys
// are only honored while api_access is enabled, so a disabled key behaves
// exactly like an unknown one.
func (s *Store) GetByAPIKey(ctx context.Context, key string) (models.Organization, error) {
	var org models.Organization
	err := s.c.FindOne(ctx, bson.M{"api_key": key, "api_access": true}).Decode(&org)
	if err != nil {
		return models.Organization{}, err
	}
	return org, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Group catalog                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

// AddGroup appends a group to the embedded catalog with a guarded $push:
// the filter requires slot index MaxGroupsPerOrg-1 to be vacant, so two
// concurrent adds can never push the array past the cap. A duplicate-key
// error means the generated identifier collided with another tenant's;
// callers retry once with a fresh identifier.
func (s *Store) AddGroup(ctx context.Context, orgID primitive.ObjectID, group models.Group) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{
			"_id": orgID,
			"groups." + maxGroupIndex: bson.M{"$exists": false},
		},
		bson.M{
			"$push": bson.M{"groups": group},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateGroupID
		}
		return err
	}
	if res.MatchedCount == 0 {
		// Either the org is gone or the array is full; tell them apart.
		if err := s.c.FindOne(ctx, bson.M{"_id": orgID}).Err(); err != nil {
			return err
		}
		return ErrGroupLimit
	}
	return nil
}

// RemoveGroup pulls a group from the catalog. Existing notices keep the
// identifier and stay readable; only the catalog entry goes away. The
// filter requires the group to be present: the $set timestamp would
// otherwise make the write count as a modification even when the $pull
// found nothing.
func (s *Store) RemoveGroup(ctx context.Context, orgID primitive.ObjectID, groupID string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": orgID, "groups.id": groupID},
		bson.M{
			"$pull": bson.M{"groups": bson.M{"id": groupID}},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Either the org is gone or the group was never in its catalog;
		// tell them apart.
		if err := s.c.FindOne(ctx, bson.M{"_id": orgID}).Err(); err != nil {
			return err
		}
		return ErrGroupNotFound
	}
	return nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Monthly quota                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

// ReserveNotice atomically claims one slot of the monthly quota for the
// given period ("2006-01"). Two shapes are tried in order:
//
//  1. same period, count below the limit: plain $inc;
//  2. a different stored period: the month rolled over, so the counter is
//     reset to 1 and the period stamped.
//
// If neither matches, the org either does not exist or has exhausted the
// current period.
func (s *Store) ReserveNotice(ctx context.Context, orgID primitive.ObjectID, period string) error {
	now := time.Now().UTC()

	res, err := s.c.UpdateOne(ctx,
		bson.M{
			"_id":          orgID,
			"quota_period": period,
			"notice_count": bson.M{"$lt": quota.Limit},
		},
		bson.M{
			"$inc": bson.M{"notice_count": 1},
			"$set": bson.M{"updated_at": now},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 1 {
		return nil
	}

	res, err = s.c.UpdateOne(ctx,
		bson.M{
			"_id":          orgID,
			"quota_period": bson.M{"$ne": period},
		},
		bson.M{"$set": bson.M{
			"quota_period": period,
			"notice_count": 1,
			"updated_at":   now,
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 1 {
		return nil
	}

	if err := s.c.FindOne(ctx, bson.M{"_id": orgID}).Err(); err != nil {
		return err
	}
	return ErrQuotaExceeded
}

// ReleaseNotice undoes a reservation whose insert failed, and is also
// called when a notice is deleted within its creation month. The guard on
// quota_period means a release after a rollover is a no-op rather than a
// corruption of the fresh counter.
func (s *Store) ReleaseNotice(ctx context.Context, orgID primitive.ObjectID, period string) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{
			"_id":          orgID,
			"quota_period": period,
			"notice_count": bson.M{"$gt": 0},
		},
		bson.M{
			"$inc": bson.M{"notice_count": -1},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		},
	)
	return err
}

// ReconcileNoticeCount overwrites the counter with a value derived from the
// live notices collection. Run periodically to heal drift from crashes
// between reserve and insert.
func (s *Store) ReconcileNoticeCount(ctx context.Context, orgID primitive.ObjectID, period string, count int64) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": orgID},
		bson.M{"$set": bson.M{
			"quota_period": period,
			"notice_count": count,
			"updated_at":   time.Now().UTC(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ResetStaleQuotas zeroes the counter for every organization whose stored
// period is behind the given one. ReserveNotice rolls periods over lazily
// on the next publish; this sweep keeps dashboards truthful for orgs that
// stay idle across the month boundary.
func (s *Store) ResetStaleQuotas(ctx context.Context, period string) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"quota_period": bson.M{"$ne": period}, "notice_count": bson.M{"$gt": 0}},
		bson.M{"$set": bson.M{
			"quota_period": period,
			"notice_count": 0,
			"updated_at":   time.Now().UTC(),
		}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| API access & branding                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// SetAPIAccess toggles machine ingestion without touching the key, so
// re-enabling restores the previously issued credential.
func (s *Store) SetAPIAccess(ctx context.Context, orgID primitive.ObjectID, enabled bool) error {
	res, err := s.c.UpdateByID(ctx, orgID, bson.M{"$set": bson.M{
		"api_access": enabled,
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

// RotateAPIKey replaces the ingestion key. The old key stops working
// immediately.
func (s *Store) RotateAPIKey(ctx context.Context, orgID primitive.ObjectID, key string) error {
	res, err := s.c.UpdateByID(ctx, orgID, bson.M{"$set": bson.M{
		"api_key":    key,
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

// UpdateBranding sets the viewer-facing presentation overrides.
func (s *Store) UpdateBranding(ctx context.Context, orgID primitive.ObjectID, custom bool, themeColors, orgLogo string) error {
	res, err := s.c.UpdateByID(ctx, orgID, bson.M{"$set": bson.M{
		"custom_branding": custom,
		"theme_colors":    themeColors,
		"org_logo":        orgLogo,
		"updated_at":      time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

