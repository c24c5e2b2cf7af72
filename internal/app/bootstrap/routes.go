// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/storage"
	authgooglefeature "github.com/noticehub/noticehub/internal/app/features/authgoogle"
	groupsfeature "github.com/noticehub/noticehub/internal/app/features/groups"
	healthfeature "github.com/noticehub/noticehub/internal/app/features/health"
	ingestfeature "github.com/noticehub/noticehub/internal/app/features/ingest"
	loginfeature "github.com/noticehub/noticehub/internal/app/features/login"
	logoutfeature "github.com/noticehub/noticehub/internal/app/features/logout"
	noticesfeature "github.com/noticehub/noticehub/internal/app/features/notices"
	settingsfeature "github.com/noticehub/noticehub/internal/app/features/settings"
	signupfeature "github.com/noticehub/noticehub/internal/app/features/signup"
	uploadsfeature "github.com/noticehub/noticehub/internal/app/features/uploads"
	userinfofeature "github.com/noticehub/noticehub/internal/app/features/userinfo"
	viewerfeature "github.com/noticehub/noticehub/internal/app/features/viewer"
	"github.com/noticehub/noticehub/internal/app/store/oauthstate"
	"github.com/noticehub/noticehub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. NoticeHub mounts three surfaces:
//   - anonymous: /health, /viewer/*, auth entry points
//   - admin (cookie session): /groups, /notices, /settings, /uploads
//   - machine (X-API-Key): /api/v1
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.NoticeHubMongoDatabase

	blobStore, err := storage.New(storage.Config{
		Type:        appCfg.StorageType,
		LocalPath:   appCfg.StorageLocalPath,
		LocalURL:    appCfg.StorageLocalURL,
		S3Region:    appCfg.StorageS3Region,
		S3Bucket:    appCfg.StorageS3Bucket,
		S3Prefix:    appCfg.StorageS3Prefix,
		CFURL:       appCfg.StorageCFURL,
		CFKeyPairID: appCfg.StorageCFKeyPairID,
		CFKeyPath:   appCfg.StorageCFKeyPath,
	})
	if err != nil {
		logger.Error("storage init failed", zap.Error(err))
		return nil, err
	}

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	// This makes the current admin available to all handlers via auth.CurrentUser(r).
	r.Use(auth.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.NoticeHubMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Account lifecycle
	signupHandler := signupfeature.NewHandler(db, logger)
	r.Mount("/signup", signupfeature.Routes(signupHandler))

	loginHandler := loginfeature.NewHandler(db, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	googleHandler := authgooglefeature.NewHandler(
		db, oauthstate.New(db),
		appCfg.GoogleClientID, appCfg.GoogleClientSecret,
		appCfg.BaseURL, appCfg.FrontendURL, logger)
	r.Mount("/login/google", authgooglefeature.Routes(googleHandler))

	logoutHandler := logoutfeature.NewHandler(logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	// Session identity lookup for the dashboard shell
	userinfoHandler := userinfofeature.NewHandler(db, logger)
	r.Mount("/me", userinfofeature.Routes(userinfoHandler))

	// Anonymous viewer surface
	viewerHandler := viewerfeature.NewHandler(db, logger)
	r.Mount("/viewer", viewerfeature.Routes(viewerHandler))

	// Machine ingestion surface (authenticated by X-API-Key, not session)
	ingestHandler := ingestfeature.NewHandler(db, logger)
	r.Mount("/api/v1", ingestfeature.Routes(ingestHandler))

	// Admin surface
	groupsHandler := groupsfeature.NewHandler(db, logger)
	noticesHandler := noticesfeature.NewHandler(db, logger)
	settingsHandler := settingsfeature.NewHandler(db, logger)
	uploadsHandler := uploadsfeature.NewHandler(blobStore, logger)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSignedIn)
		r.Route("/groups", groupsHandler.MountRoutes)
		r.Route("/notices", noticesHandler.MountRoutes)
		r.Route("/settings", settingsHandler.MountRoutes)
		r.Route("/uploads", uploadsHandler.MountRoutes)
	})

	return r, nil
}
