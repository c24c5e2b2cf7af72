package ingest_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/noticehub/noticehub/internal/app/features/ingest"
	"github.com/noticehub/noticehub/internal/app/system/apikey"
	"github.com/noticehub/noticehub/internal/app/system/quota"
	"github.com/noticehub/noticehub/internal/domain/models"
	"github.com/noticehub/noticehub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*ingest.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return ingest.NewHandler(db, zap.NewNop()), db
}

// grantAPIKey mints a key for the org and enables machine access.
func grantAPIKey(t *testing.T, db *mongo.Database, org models.Organization) string {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	key := apikey.New()
	_, err := db.Collection("organizations").UpdateByID(ctx, org.ID,
		bson.M{"$set": bson.M{"api_key": key, "api_access": true}})
	if err != nil {
		t.Fatalf("failed to grant API key: %v", err)
	}
	return key
}

func ingestBody(groupID, title string) string {
	return fmt.Sprintf(`{"group_id": %q, "title": %q, "description": "Sent by the bell schedule bot.", "tag": "general"}`, groupID, title)
}

func TestCreate_WithValidKey(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	org := fx.CreateOrganization(ctx, "Ingest Org")
	group := fx.AddGroup(ctx, org, "Announcements")
	key := grantAPIKey(t, db, org)

	req := testutil.NewJSONRequest("POST", "/api/v1/notices", ingestBody(group.ID, "Schedule change"))
	req.Header.Set(apikey.HeaderName, key)
	rec := testutil.NewRecorder()
	handler.Create(rec, req)

	rec.AssertStatus(t, http.StatusCreated)
	rec.AssertContains(t, "Schedule change")

	count, err := db.Collection("notices").CountDocuments(ctx, bson.M{"org_id": org.ID})
	if err != nil {
		t.Fatalf("failed to count notices: %v", err)
	}
	if count != 1 {
		t.Errorf("notices in collection: got %d, want 1", count)
	}
}

func TestCreate_MissingKey(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := testutil.NewJSONRequest("POST", "/api/v1/notices", ingestBody("NH-AAAA-BBBB-CCCC", "x"))
	rec := testutil.NewRecorder()
	handler.Create(rec, req)

	rec.AssertStatus(t, http.StatusUnauthorized)
	rec.AssertContains(t, "invalid API key")
}

func TestCreate_UnknownKey(t *testing.T) {
	handler, _ := newTestHandler(t)

	key := apikey.New()
	req := testutil.NewJSONRequest("POST", "/api/v1/notices", ingestBody("NH-AAAA-BBBB-CCCC", "x"))
	req.Header.Set(apikey.HeaderName, key)
	rec := testutil.NewRecorder()
	handler.Create(rec, req)

	rec.AssertStatus(t, http.StatusUnauthorized)
	rec.AssertContains(t, "invalid API key")
}

func TestCreate_DisabledAccessLooksLikeBadKey(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	org := fx.CreateOrganization(ctx, "Disabled Org")
	group := fx.AddGroup(ctx, org, "Updates")
	key := grantAPIKey(t, db, org)

	_, err := db.Collection("organizations").UpdateByID(ctx, org.ID,
		bson.M{"$set": bson.M{"api_access": false}})
	if err != nil {
		t.Fatalf("failed to disable API access: %v", err)
	}

	req := testutil.NewJSONRequest("POST", "/api/v1/notices", ingestBody(group.ID, "Should not land"))
	req.Header.Set(apikey.HeaderName, key)
	rec := testutil.NewRecorder()
	handler.Create(rec, req)

	// Same opaque response as a key that never existed.
	rec.AssertStatus(t, http.StatusUnauthorized)
	rec.AssertContains(t, "invalid API key")
}

func TestCreate_GroupNotChecked(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	org := fx.CreateOrganization(ctx, "Org A")
	key := grantAPIKey(t, db, org)

	// The identifier is not in any catalog; the API accepts it anyway
	// and attributes the notice to the key's org.
	req := testutil.NewJSONRequest("POST", "/api/v1/notices", ingestBody("NH-AAAA-BBBB-CCCC", "Uncatalogued"))
	req.Header.Set(apikey.HeaderName, key)
	rec := testutil.NewRecorder()
	handler.Create(rec, req)

	rec.AssertStatus(t, http.StatusCreated)

	var notice models.Notice
	if err := db.Collection("notices").FindOne(ctx, bson.M{"group_id": "NH-AAAA-BBBB-CCCC"}).Decode(&notice); err != nil {
		t.Fatalf("failed to load notice: %v", err)
	}
	if notice.OrgID != org.ID {
		t.Errorf("OrgID: got %v, want %v", notice.OrgID, org.ID)
	}
	if notice.OrgName != org.Name {
		t.Errorf("OrgName: got %q, want %q", notice.OrgName, org.Name)
	}
}

func TestCreate_UnknownTag(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	org := fx.CreateOrganization(ctx, "Tag Org")
	group := fx.AddGroup(ctx, org, "Feed")
	key := grantAPIKey(t, db, org)

	body := fmt.Sprintf(`{"group_id": %q, "title": "t", "description": "d", "tag": "party"}`, group.ID)
	req := testutil.NewJSONRequest("POST", "/api/v1/notices", body)
	req.Header.Set(apikey.HeaderName, key)
	rec := testutil.NewRecorder()
	handler.Create(rec, req)

	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "unknown tag")
}

func TestCreate_QuotaExceeded(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	org := fx.CreateOrganization(ctx, "Full Org")
	group := fx.AddGroup(ctx, org, "Feed")
	key := grantAPIKey(t, db, org)

	_, err := db.Collection("organizations").UpdateByID(ctx, org.ID,
		bson.M{"$set": bson.M{"notice_count": quota.Limit}})
	if err != nil {
		t.Fatalf("failed to exhaust quota: %v", err)
	}

	req := testutil.NewJSONRequest("POST", "/api/v1/notices", ingestBody(group.ID, "One too many"))
	req.Header.Set(apikey.HeaderName, key)
	rec := testutil.NewRecorder()
	handler.Create(rec, req)

	rec.AssertStatus(t, http.StatusTooManyRequests)
	rec.AssertContains(t, "quota")
}
