package db

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// StartHistoryCleaner deletes conversion history older than retention every
// interval until ctx is cancelled. The store never bounds history itself; the
// host process opts into this worker through configuration.
func StartHistoryCleaner(
	ctx context.Context,
	db *sql.DB,
	interval time.Duration,
	retention time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cutoff := time.Now().Add(-retention).UnixMilli()
				res, err := db.ExecContext(ctx, `DELETE FROM conversions WHERE created_at < $1`, cutoff)
				if err != nil {
					log.Error("failed to clean conversion history", zap.Error(err))
					continue
				}
				if rows, _ := res.RowsAffected(); rows > 0 {
					log.Info("cleaned conversion history", zap.Int64("removed", rows))
				}
			}
		}
	}()
}
