package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// createPlaylistJobs creates the job queue table. The partial unique index
// guarantees at most one active (pending or processing) job per playlist.
func createPlaylistJobs() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "001_create_playlist_jobs",
		Migrate: func(tx *gorm.DB) error {
			err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS playlist_jobs (
					id UUID PRIMARY KEY,
					playlist_id VARCHAR(100) NOT NULL,
					status VARCHAR(20) NOT NULL DEFAULT 'pending',

					attempts INTEGER DEFAULT 0,
					last_error TEXT,

					created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
					started_at TIMESTAMP,
					finished_at TIMESTAMP,

					processing_time_ms BIGINT DEFAULT 0
				);
			`).Error
			if err != nil {
				return err
			}

			indexes := []string{
				"CREATE INDEX IF NOT EXISTS idx_jobs_status_created ON playlist_jobs(status, created_at);",
				"CREATE INDEX IF NOT EXISTS idx_jobs_playlist_id ON playlist_jobs(playlist_id);",
				"CREATE UNIQUE INDEX IF NOT EXISTS uq_jobs_active_playlist ON playlist_jobs(playlist_id) WHERE status IN ('pending', 'processing');",
			}

			for _, idx := range indexes {
				if err := tx.Exec(idx).Error; err != nil {
					return err
				}
			}

			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Exec("DROP TABLE IF EXISTS playlist_jobs;").Error
		},
	}
}
