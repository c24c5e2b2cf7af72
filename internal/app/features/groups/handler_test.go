package groups_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/noticehub/noticehub/internal/app/features/groups"
	"github.com/noticehub/noticehub/internal/app/system/groupid"
	"github.com/noticehub/noticehub/internal/domain/models"
	"github.com/noticehub/noticehub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*groups.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return groups.NewHandler(db, zap.NewNop()), db
}

func TestList(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	org := fx.CreateOrganization(ctx, "List Org")
	fx.AddGroup(ctx, org, "Room 1")
	fx.AddGroup(ctx, org, "Room 2")

	req := testutil.NewAuthenticatedRequest("GET", "/groups", testutil.AdminFor(org.ID))
	rec := testutil.NewRecorder()
	handler.List(rec, req)

	rec.AssertStatus(t, http.StatusOK)

	var resp struct {
		Groups []models.Group `json:"groups"`
		Limit  int            `json:"limit"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Groups) != 2 {
		t.Errorf("groups: got %d, want 2", len(resp.Groups))
	}
	if resp.Limit != models.MaxGroupsPerOrg {
		t.Errorf("limit: got %d, want %d", resp.Limit, models.MaxGroupsPerOrg)
	}
}

func TestCreate_GeneratesIdentifier(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	org := fx.CreateOrganization(ctx, "Create Org")

	req := testutil.NewJSONRequest("POST", "/groups", `{"name": "Morning Shift"}`)
	req = testutil.WithUser(req, testutil.AdminFor(org.ID))
	rec := testutil.NewRecorder()
	handler.Create(rec, req)

	rec.AssertStatus(t, http.StatusCreated)

	var group models.Group
	if err := json.Unmarshal(rec.Body.Bytes(), &group); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !groupid.Valid(group.ID) {
		t.Errorf("generated identifier %q is not valid", group.ID)
	}
	if group.Name != "Morning Shift" {
		t.Errorf("name: got %q, want %q", group.Name, "Morning Shift")
	}
}

func TestCreate_EmptyName(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	org := fx.CreateOrganization(ctx, "Empty Name Org")

	req := testutil.NewJSONRequest("POST", "/groups", `{"name": "   "}`)
	req = testutil.WithUser(req, testutil.AdminFor(org.ID))
	rec := testutil.NewRecorder()
	handler.Create(rec, req)

	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestCreate_LimitReached(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	org := fx.CreateOrganization(ctx, "Limit Org")
	for i := 0; i < models.MaxGroupsPerOrg; i++ {
		fx.AddGroup(ctx, org, "Group")
	}

	req := testutil.NewJSONRequest("POST", "/groups", `{"name": "One Over"}`)
	req = testutil.WithUser(req, testutil.AdminFor(org.ID))
	rec := testutil.NewRecorder()
	handler.Create(rec, req)

	rec.AssertStatus(t, http.StatusConflict)
	rec.AssertContains(t, "group limit reached")
}

func TestDelete_LeavesNotices(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	org := fx.CreateOrganization(ctx, "Delete Org")
	group := fx.AddGroup(ctx, org, "Doomed")
	fx.CreateNotice(ctx, org, group.ID, "Survivor")

	req := testutil.NewAuthenticatedRequest("DELETE", "/groups/"+group.ID, testutil.AdminFor(org.ID))
	req = testutil.WithChiURLParam(req, "id", group.ID)
	rec := testutil.NewRecorder()
	handler.Delete(rec, req)

	rec.AssertStatus(t, http.StatusOK)

	var reloaded models.Organization
	if err := db.Collection("organizations").FindOne(ctx, bson.M{"_id": org.ID}).Decode(&reloaded); err != nil {
		t.Fatalf("failed to reload organization: %v", err)
	}
	if len(reloaded.Groups) != 0 {
		t.Errorf("groups after delete: got %d, want 0", len(reloaded.Groups))
	}

	count, err := db.Collection("notices").CountDocuments(ctx, bson.M{"group_id": group.ID})
	if err != nil {
		t.Fatalf("failed to count notices: %v", err)
	}
	if count != 1 {
		t.Errorf("notices after group delete: got %d, want 1", count)
	}
}
