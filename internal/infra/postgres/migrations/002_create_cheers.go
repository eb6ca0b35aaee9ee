package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// createCheersTable creates the cheer message table and its lookup indexes.
func createCheersTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "002_create_cheers",
		Migrate: func(tx *gorm.DB) error {
			err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS cheers (
					id VARCHAR(36) PRIMARY KEY,
					artist_id VARCHAR(64) NOT NULL,
					author VARCHAR(50) NOT NULL,
					message VARCHAR(800) NOT NULL,
					created_at TIMESTAMP NOT NULL
				);
			`).Error
			if err != nil {
				return err
			}

			indexes := []string{
				"CREATE INDEX IF NOT EXISTS idx_cheers_artist_id ON cheers(artist_id);",
				"CREATE INDEX IF NOT EXISTS idx_cheers_created_at ON cheers(created_at);",
			}
			for _, idx := range indexes {
				if err := tx.Exec(idx).Error; err != nil {
					return err
				}
			}

			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Exec("DROP TABLE IF EXISTS cheers;").Error
		},
	}
}
