package migrations

import (
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

// Run applies every pending migration in FS against db, using dialect
// ("sqlite3", "postgres", ...) to pick goose's SQL flavor. Grounded on
// Yacobolo-ducklake-dataplatform's internal/db.RunMigrations.
func Run(db *sql.DB, dialect string) error {
	goose.SetBaseFS(FS)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("goose set dialect: %w", err)
	}
	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}
