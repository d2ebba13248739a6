package database

import (
	"context"
	"time"
)

// Cleanup removes property rows older than eight days. Production stats are
// kept.
func (db *Database) Cleanup(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, "DELETE FROM property WHERE time_stamp < $1", time.Now().AddDate(0, 0, -8)); err != nil {
		return err
	}
	return nil
}
