package scheduler

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/stayscout/stayscout/internal/database"
)

// CatalogCheckJob verifies catalog integrity and logs table sizes. The
// in-memory tables never change after startup, so this only watches the
// file on disk for corruption (the catalog may sit on flaky storage).
type CatalogCheckJob struct {
	db  *database.DB
	log zerolog.Logger
}

// NewCatalogCheckJob creates a catalog integrity check job
func NewCatalogCheckJob(db *database.DB, log zerolog.Logger) *CatalogCheckJob {
	return &CatalogCheckJob{
		db:  db,
		log: log.With().Str("job", "catalog_check").Logger(),
	}
}

// Name returns the job name
func (j *CatalogCheckJob) Name() string {
	return "catalog_check"
}

// Run executes the integrity check
func (j *CatalogCheckJob) Run() error {
	var result string
	if err := j.db.QueryRow("PRAGMA quick_check").Scan(&result); err != nil {
		return fmt.Errorf("quick_check failed: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("catalog integrity check reported: %s", result)
	}

	counts := map[string]int{}
	for _, table := range []string{"bookings", "hotels", "review_summaries"} {
		var n int
		if err := j.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
			return fmt.Errorf("failed to count %s: %w", table, err)
		}
		counts[table] = n
	}

	j.log.Info().
		Int("bookings", counts["bookings"]).
		Int("hotels", counts["hotels"]).
		Int("review_summaries", counts["review_summaries"]).
		Msg("Catalog healthy")

	return nil
}
