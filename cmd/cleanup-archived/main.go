// Command cleanup-archived physically removes archived records older than
// the configured retention period. It is intended to be invoked by an
// external cron job, not as an in-process goroutine.
//
// Records still referenced by dependents are skipped, not forced.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/ayodelan/schoolbase-backend/internal/adapter/postgres"
	auditrepo "github.com/ayodelan/schoolbase-backend/internal/adapter/postgres/audit"
	"github.com/ayodelan/schoolbase-backend/internal/adapter/postgres/entitystore"
	"github.com/ayodelan/schoolbase-backend/internal/app"
	"github.com/ayodelan/schoolbase-backend/internal/catalog"
	"github.com/ayodelan/schoolbase-backend/internal/config"
	"github.com/ayodelan/schoolbase-backend/internal/domain"
	"github.com/ayodelan/schoolbase-backend/internal/lifecycle"
	"github.com/ayodelan/schoolbase-backend/internal/translate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	cat := catalog.Default()
	engine := lifecycle.New(logger, cat, entitystore.New(pool, cat), auditrepo.New(pool), postgres.NewTxManager(pool), translate.New(cat))

	threshold := time.Now().AddDate(0, 0, -cfg.Retention.ArchivedRetentionDays)

	var deleted, skipped int
	for _, kind := range cat.Kinds() {
		d, s, err := cleanupKind(ctx, engine, kind, threshold, cfg.Retention.CleanupBatchSize)
		if err != nil {
			logger.Error("cleanup failed",
				slog.String("kind", kind.String()),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
		deleted += d
		skipped += s
	}

	logger.Info("cleanup completed",
		slog.Int("deleted", deleted),
		slog.Int("skipped", skipped),
		slog.Time("threshold", threshold),
	)
}

// cleanupKind deletes up to batchSize of the oldest archived records of one
// kind. Deleting oldest first keeps repeated runs converging even when the
// backlog exceeds one batch.
func cleanupKind(ctx context.Context, engine *lifecycle.Engine, kind domain.Kind, threshold time.Time, batchSize int) (deleted, skipped int, err error) {
	records, err := engine.ListArchived(ctx, kind, domain.QuerySpec{
		OrderBy:  "archived_at",
		OrderDir: domain.SortAsc,
		Limit:    batchSize,
	})
	if err != nil {
		return 0, 0, err
	}

	for _, rec := range records {
		if rec.ArchivedAt == nil || rec.ArchivedAt.After(threshold) {
			break
		}

		switch err := engine.HardDelete(ctx, kind, rec.ID); {
		case err == nil:
			deleted++
		case errors.Is(err, domain.ErrConflict):
			skipped++
		case errors.Is(err, domain.ErrNotFound):
			// Deleted by a concurrent run.
		default:
			return deleted, skipped, err
		}
	}
	return deleted, skipped, nil
}
