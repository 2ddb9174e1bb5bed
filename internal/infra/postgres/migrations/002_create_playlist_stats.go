package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// createPlaylistStats creates the aggregate stats table and the per-video
// rows behind it.
func createPlaylistStats() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "002_create_playlist_stats",
		Migrate: func(tx *gorm.DB) error {
			err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS playlist_stats (
					playlist_id VARCHAR(100) PRIMARY KEY,
					title VARCHAR(500),
					channel_name VARCHAR(200),
					channel_thumbnail TEXT,

					video_count INTEGER DEFAULT 0,
					declared_count INTEGER DEFAULT 0,
					partial_fetch BOOLEAN DEFAULT FALSE,

					total_views BIGINT DEFAULT 0,
					total_likes BIGINT DEFAULT 0,
					total_comments BIGINT DEFAULT 0,

					avg_views DECIMAL(20,2) DEFAULT 0,
					avg_likes DECIMAL(20,2) DEFAULT 0,
					avg_comments DECIMAL(20,2) DEFAULT 0,
					avg_engagement DECIMAL(12,6) DEFAULT 0,

					top_video_ids TEXT[],
					bottom_video_ids TEXT[],

					computed_at TIMESTAMP NOT NULL,
					created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
				);
			`).Error
			if err != nil {
				return err
			}

			err = tx.Exec(`
				CREATE TABLE IF NOT EXISTS playlist_videos (
					playlist_id VARCHAR(100) NOT NULL,
					video_id VARCHAR(50) NOT NULL,

					rank INTEGER NOT NULL,
					title VARCHAR(500),
					description TEXT,
					uploader VARCHAR(200),
					thumbnail TEXT,

					views BIGINT DEFAULT 0,
					likes BIGINT DEFAULT 0,
					dislikes BIGINT DEFAULT 0,
					comments BIGINT DEFAULT 0,

					duration_sec BIGINT DEFAULT 0,
					published_at VARCHAR(40),
					tags TEXT[],

					category_id VARCHAR(10),
					category_name VARCHAR(100),
					definition VARCHAR(5),
					dimension VARCHAR(5),
					caption BOOLEAN DEFAULT FALSE,
					licensed BOOLEAN DEFAULT FALSE,

					engagement_rate DECIMAL(12,6) DEFAULT 0,
					controversy DECIMAL(12,6) DEFAULT 0,

					created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,

					PRIMARY KEY (playlist_id, video_id)
				);
			`).Error
			if err != nil {
				return err
			}

			indexes := []string{
				"CREATE INDEX IF NOT EXISTS idx_stats_computed_at ON playlist_stats(computed_at);",
				"CREATE INDEX IF NOT EXISTS idx_videos_playlist_rank ON playlist_videos(playlist_id, rank);",
			}

			for _, idx := range indexes {
				if err := tx.Exec(idx).Error; err != nil {
					return err
				}
			}

			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			if err := tx.Exec("DROP TABLE IF EXISTS playlist_videos;").Error; err != nil {
				return err
			}

			return tx.Exec("DROP TABLE IF EXISTS playlist_stats;").Error
		},
	}
}
