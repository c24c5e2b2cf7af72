// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"github.com/noticehub/noticehub/internal/app/store/oauthstate"
	organizationstore "github.com/noticehub/noticehub/internal/app/store/organizations"
	"github.com/noticehub/noticehub/internal/app/system/auth"
	"github.com/noticehub/noticehub/internal/app/system/tasks"
	"go.uber.org/zap"
)

// scheduler runs background maintenance for the life of the process; it is
// started here and stopped in Shutdown.
var scheduler *tasks.Scheduler

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	if err := auth.InitSessionStore(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger); err != nil {
		return err
	}

	db := deps.NoticeHubMongoDatabase
	scheduler = tasks.NewScheduler(logger)
	scheduler.Add(tasks.OAuthStateCleanupJob(oauthstate.New(db), logger))
	scheduler.Add(tasks.QuotaRolloverJob(organizationstore.New(db), logger))
	scheduler.Start()

	return nil
}
