package database

import (
	"database/sql"
	"embed"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed seed/lookups.yaml
var seedFiles embed.FS

type seedItem struct {
	ID          int64  `yaml:"id"`
	DisplayName string `yaml:"display_name"`
}

// seedLookups loads the embedded reference-data catalog into the lookup
// table. Existing rows are left alone so local edits survive restarts.
func seedLookups(db *sql.DB) error {
	raw, err := seedFiles.ReadFile("seed/lookups.yaml")
	if err != nil {
		return errors.Wrap(err, "db.seed.read")
	}

	catalog := map[string][]seedItem{}
	if err := yaml.Unmarshal(raw, &catalog); err != nil {
		return errors.Wrap(err, "db.seed.parse")
	}

	stmt, err := db.Prepare(`
		INSERT OR IGNORE INTO lookup (id, kind, display_name)
		VALUES (?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "db.seed.prepare")
	}
	defer stmt.Close()

	for kind, items := range catalog {
		for _, item := range items {
			if _, err := stmt.Exec(item.ID, kind, item.DisplayName); err != nil {
				return errors.Wrapf(err, "db.seed.insert %s/%d", kind, item.ID)
			}
		}
	}
	return nil
}
