package repositories

import (
	"fmt"

	"github.com/anonto42/beawarely-feed/internal/models"
	"gorm.io/gorm"
)

// ChangeChannel is the Postgres NOTIFY channel the source tables publish on
const ChangeChannel = "feed_changes"

const notifyFunction = `
CREATE OR REPLACE FUNCTION notify_feed_change() RETURNS trigger AS $$
BEGIN
	PERFORM pg_notify('` + ChangeChannel + `', TG_TABLE_NAME);
	RETURN NULL;
END;
$$ LANGUAGE plpgsql`

// Migrate creates the feed tables and the triggers that publish row changes
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Profile{},
		&models.UserPost{},
		&models.ToolIdea{},
		&models.WorkExperience{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if err := db.Exec(notifyFunction).Error; err != nil {
		return fmt.Errorf("create notify function: %w", err)
	}
	for _, table := range models.SourceTables {
		trigger := table + "_feed_change"
		stmts := []string{
			fmt.Sprintf(`DROP TRIGGER IF EXISTS %s ON %s`, trigger, table),
			fmt.Sprintf(`CREATE TRIGGER %s AFTER INSERT OR UPDATE OR DELETE ON %s
				FOR EACH STATEMENT EXECUTE FUNCTION notify_feed_change()`, trigger, table),
		}
		for _, stmt := range stmts {
			if err := db.Exec(stmt).Error; err != nil {
				return fmt.Errorf("install trigger on %s: %w", table, err)
			}
		}
	}
	return nil
}
