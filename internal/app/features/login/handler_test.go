package login_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/noticehub/noticehub/internal/app/features/login"
	"github.com/noticehub/noticehub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newTestHandler(t *testing.T) (*login.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	testutil.InitTestSessions(t)
	return login.NewHandler(db, zap.NewNop()), db
}

func seedAccount(t *testing.T, db *mongo.Database, email, password string) {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	fx := testutil.NewFixtures(t, db)
	org := fx.CreateOrganization(ctx, "Login Org "+email)
	fx.CreateAdmin(ctx, org.ID, email, string(hash))
}

func loginBody(email, password string) string {
	return fmt.Sprintf(`{"email": %q, "password": %q}`, email, password)
}

func TestPassword_Success(t *testing.T) {
	handler, db := newTestHandler(t)
	seedAccount(t, db, "admin@example.com", "correct-horse-battery")

	req := testutil.NewJSONRequest("POST", "/login", loginBody("admin@example.com", "correct-horse-battery"))
	rec := testutil.NewRecorder()
	handler.Password(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "admin@example.com")
	if len(rec.Result().Cookies()) == 0 {
		t.Error("expected a session cookie on login")
	}
}

func TestPassword_CaseInsensitiveEmail(t *testing.T) {
	handler, db := newTestHandler(t)
	seedAccount(t, db, "mixed@example.com", "correct-horse-battery")

	req := testutil.NewJSONRequest("POST", "/login", loginBody("MIXED@Example.COM", "correct-horse-battery"))
	rec := testutil.NewRecorder()
	handler.Password(rec, req)

	rec.AssertStatus(t, http.StatusOK)
}

func TestPassword_WrongPassword(t *testing.T) {
	handler, db := newTestHandler(t)
	seedAccount(t, db, "admin@example.com", "correct-horse-battery")

	req := testutil.NewJSONRequest("POST", "/login", loginBody("admin@example.com", "wrong"))
	rec := testutil.NewRecorder()
	handler.Password(rec, req)

	rec.AssertStatus(t, http.StatusUnauthorized)
	rec.AssertContains(t, "invalid email or password")
}

func TestPassword_UnknownEmail(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := testutil.NewJSONRequest("POST", "/login", loginBody("nobody@example.com", "whatever123"))
	rec := testutil.NewRecorder()
	handler.Password(rec, req)

	// Identical to the wrong-password response.
	rec.AssertStatus(t, http.StatusUnauthorized)
	rec.AssertContains(t, "invalid email or password")
}

func TestPassword_GoogleOnlyAccount(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	org := fx.CreateOrganization(ctx, "Google Org")
	admin := fx.CreateAdmin(ctx, org.ID, "google@example.com", "")
	_, err := db.Collection("admins").UpdateByID(ctx, admin.ID,
		bson.M{"$set": bson.M{"auth_method": "google", "google_sub": "sub-123"}})
	if err != nil {
		t.Fatalf("failed to convert account to google auth: %v", err)
	}

	req := testutil.NewJSONRequest("POST", "/login", loginBody("google@example.com", "whatever123"))
	rec := testutil.NewRecorder()
	handler.Password(rec, req)

	rec.AssertStatus(t, http.StatusUnauthorized)
}

func TestPassword_OrphanedAdmin(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	seedAccount(t, db, "orphan@example.com", "correct-horse-battery")
	_, err := db.Collection("organizations").DeleteMany(ctx, bson.M{})
	if err != nil {
		t.Fatalf("failed to delete organizations: %v", err)
	}

	req := testutil.NewJSONRequest("POST", "/login", loginBody("orphan@example.com", "correct-horse-battery"))
	rec := testutil.NewRecorder()
	handler.Password(rec, req)

	rec.AssertStatus(t, http.StatusConflict)
	rec.AssertContains(t, "account setup incomplete")
}

func TestPassword_RateLimited(t *testing.T) {
	handler, db := newTestHandler(t)
	seedAccount(t, db, "victim@example.com", "correct-horse-battery")

	var last *testutil.ResponseRecorder
	for i := 0; i < 11; i++ {
		req := testutil.NewJSONRequest("POST", "/login", loginBody("victim@example.com", "wrong"))
		req.RemoteAddr = "203.0.113.9:55555"
		last = testutil.NewRecorder()
		handler.Password(last, req)
	}

	last.AssertStatus(t, http.StatusTooManyRequests)
}
