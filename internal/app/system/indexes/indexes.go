// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureAdmins(ctx, db); err != nil {
		problems = append(problems, "admins: "+err.Error())
	}
	if err := ensureOrganizations(ctx, db); err != nil {
		problems = append(problems, "organizations: "+err.Error())
	}
	if err := ensureNotices(ctx, db); err != nil {
		problems = append(problems, "notices: "+err.Error())
	}
	if err := ensureOAuthStates(ctx, db); err != nil {
		problems = append(problems, "oauth_states: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func ensureAdmins(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("admins").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_admin_email_ci"),
		},
		{
			Keys: bson.D{{Key: "google_sub", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true).
				SetName("uniq_admin_google_sub"),
		},
	})
	return err
}

func ensureOrganizations(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("organizations").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_org_name_ci"),
		},
		// Group identifiers are globally unique capability tokens. The
		// unique index over the embedded array turns the generator's
		// "astronomically unlikely" collision into a hard reject the
		// store retries on.
		{
			Keys: bson.D{{Key: "groups.id", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true).
				SetName("uniq_group_id"),
		},
		{
			Keys: bson.D{{Key: "api_key", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true).
				SetName("uniq_api_key"),
		},
	})
	return err
}

func ensureNotices(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("notices").Indexes().CreateMany(ctx, []mongo.IndexModel{
		// Viewer read path: exact group id, newest first.
		{
			Keys:    bson.D{{Key: "group_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_group_created"),
		},
		// Admin read path and quota reconciliation.
		{
			Keys:    bson.D{{Key: "org_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_org_created"),
		},
	})
	return err
}

func ensureOAuthStates(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("oauth_states").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "state", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_oauth_state"),
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0).SetName("ttl_oauth_state"),
		},
	})
	return err
}
