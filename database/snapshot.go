package database

import (
	"context"
	"os"

	"github.com/solocreator/planner/errs"
)

// Snapshot writes a consistent copy of the SQLite database to dest. The file must not exist.
func (d Database) Snapshot(ctx context.Context, dest string) error {
	if d.db.Dialector.Name() != TypeSQLite {
		return errs.NewBadRequestError("snapshots are only available for sqlite databases")
	}
	if _, err := os.Stat(dest); err == nil {
		return errs.NewAlreadyExists("snapshot " + dest)
	}
	if err := d.db.WithContext(ctx).Exec("VACUUM INTO ?", dest).Error; err != nil {
		return errs.NewSnapshotError(dest, err)
	}
	return nil
}
