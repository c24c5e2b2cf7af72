// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	"github.com/noticehub/noticehub/internal/app/store/oauthstate"
	organizationstore "github.com/noticehub/noticehub/internal/app/store/organizations"
	"github.com/noticehub/noticehub/internal/app/system/quota"
	"go.uber.org/zap"
)

// OAuthStateCleanupJob removes expired OAuth state tokens. This is a
// backup for when MongoDB's TTL index cleanup is delayed.
func OAuthStateCleanupJob(stateStore *oauthstate.Store, logger *zap.Logger) Job {
	return Job{
		Name:     "oauth-state-cleanup",
		Interval: 1 * time.Hour,
		Run: func(ctx context.Context) error {
			count, err := stateStore.CleanupExpired(ctx)
			if err != nil {
				return err
			}
			if count > 0 {
				logger.Debug("cleaned up expired OAuth states", zap.Int64("count", count))
			}
			return nil
		},
	}
}

// QuotaRolloverJob zeroes the publish counter for organizations whose
// stored period fell behind the current month. Publishing rolls the period
// lazily; this sweep covers orgs that go quiet across a month boundary so
// their dashboards read zero without waiting for the next publish.
func QuotaRolloverJob(orgStore *organizationstore.Store, logger *zap.Logger) Job {
	return Job{
		Name:     "quota-rollover",
		Interval: 1 * time.Hour,
		Run: func(ctx context.Context) error {
			period := quota.Period(time.Now().UTC())
			count, err := orgStore.ResetStaleQuotas(ctx, period)
			if err != nil {
				return err
			}
			if count > 0 {
				logger.Info("rolled over stale quota counters",
					zap.Int64("count", count),
					zap.String("period", period))
			}
			return nil
		},
	}
}
