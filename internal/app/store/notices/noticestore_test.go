package noticestore_test

import (
	"testing"
	"time"

	noticestore "github.com/noticehub/noticehub/internal/app/store/notices"
	"github.com/noticehub/noticehub/internal/domain/models"
	"github.com/noticehub/noticehub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := noticestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fixtures.CreateOrganization(ctx, "Notice Test Org")
	group := fixtures.AddGroup(ctx, org, "Announcements")

	created, err := store.Create(ctx, models.Notice{
		OrgID:       org.ID,
		OrgName:     org.Name,
		GroupID:     group.ID,
		Title:       "Welcome",
		Description: "<p>Hello</p>",
		Tag:         models.TagGeneral,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID.IsZero() {
		t.Error("expected ID to be assigned")
	}
	if created.Views != 0 {
		t.Errorf("Views: got %d, want 0", created.Views)
	}
	if created.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestStore_ListByGroup_NewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := noticestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fixtures.CreateOrganization(ctx, "Order Test Org")
	group := fixtures.AddGroup(ctx, org, "Feed")

	first := fixtures.CreateNotice(ctx, org, group.ID, "First")
	// Force distinct timestamps.
	_, err := db.Collection("notices").UpdateByID(ctx, first.ID,
		bson.M{"$set": bson.M{"created_at": time.Now().UTC().Add(-time.Hour)}})
	if err != nil {
		t.Fatalf("backdating first notice failed: %v", err)
	}
	fixtures.CreateNotice(ctx, org, group.ID, "Second")

	list, err := store.ListByGroup(ctx, group.ID)
	if err != nil {
		t.Fatalf("ListByGroup failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 notices, got %d", len(list))
	}
	if list[0].Title != "Second" || list[1].Title != "First" {
		t.Errorf("expected newest first, got [%q, %q]", list[0].Title, list[1].Title)
	}
}

func TestStore_IncrementViews(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := noticestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fixtures.CreateOrganization(ctx, "Views Test Org")
	group := fixtures.AddGroup(ctx, org, "Viewed")
	n := fixtures.CreateNotice(ctx, org, group.ID, "Counted")

	for i := 0; i < 3; i++ {
		if err := store.IncrementViews(ctx, n.ID); err != nil {
			t.Fatalf("IncrementViews %d failed: %v", i, err)
		}
	}

	found, err := store.GetByID(ctx, n.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if found.Views != 3 {
		t.Errorf("Views: got %d, want 3", found.Views)
	}
}

func TestStore_IncrementViews_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := noticestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := store.IncrementViews(ctx, primitive.NewObjectID())
	if err != mongo.ErrNoDocuments {
		t.Errorf("expected mongo.ErrNoDocuments, got %v", err)
	}
}

func TestStore_Delete_ScopedToOrg(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := noticestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fixtures.CreateOrganization(ctx, "Owner Org")
	other := fixtures.CreateOrganization(ctx, "Other Org")
	group := fixtures.AddGroup(ctx, org, "Protected")
	n := fixtures.CreateNotice(ctx, org, group.ID, "Mine")

	// A different tenant cannot delete it.
	deleted, err := store.Delete(ctx, n.ID, other.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if deleted != 0 {
		t.Errorf("cross-tenant delete: got %d, want 0", deleted)
	}

	deleted, err = store.Delete(ctx, n.ID, org.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("owner delete: got %d, want 1", deleted)
	}
}

func TestStore_CountByOrgSince(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := noticestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fixtures.CreateOrganization(ctx, "Count Test Org")
	group := fixtures.AddGroup(ctx, org, "Counted")

	old := fixtures.CreateNotice(ctx, org, group.ID, "Old")
	_, err := db.Collection("notices").UpdateByID(ctx, old.ID,
		bson.M{"$set": bson.M{"created_at": time.Now().UTC().AddDate(0, -2, 0)}})
	if err != nil {
		t.Fatalf("backdating notice failed: %v", err)
	}
	fixtures.CreateNotice(ctx, org, group.ID, "Recent")

	count, err := store.CountByOrgSince(ctx, org.ID, time.Now().UTC().AddDate(0, -1, 0))
	if err != nil {
		t.Fatalf("CountByOrgSince failed: %v", err)
	}
	if count != 1 {
		t.Errorf("count: got %d, want 1", count)
	}
}

func TestStore_TotalViews(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := noticestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fixtures.CreateOrganization(ctx, "Stats Test Org")
	group := fixtures.AddGroup(ctx, org, "Stats")

	a := fixtures.CreateNotice(ctx, org, group.ID, "A")
	b := fixtures.CreateNotice(ctx, org, group.ID, "B")
	for i := 0; i < 2; i++ {
		if err := store.IncrementViews(ctx, a.ID); err != nil {
			t.Fatalf("IncrementViews failed: %v", err)
		}
	}
	if err := store.IncrementViews(ctx, b.ID); err != nil {
		t.Fatalf("IncrementViews failed: %v", err)
	}

	total, err := store.TotalViews(ctx, org.ID)
	if err != nil {
		t.Fatalf("TotalViews failed: %v", err)
	}
	if total != 3 {
		t.Errorf("total views: got %d, want 3", total)
	}
}

func TestStore_TotalViews_Empty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := noticestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	total, err := store.TotalViews(ctx, primitive.NewObjectID())
	if err != nil {
		t.Fatalf("TotalViews failed: %v", err)
	}
	if total != 0 {
		t.Errorf("total views: got %d, want 0", total)
	}
}
