package database

import (
	"context"

	"github.com/anicoll/sunweg-integration/internal/pkg/model"
)

// Write stores property rows produced by the publisher.
func (db *Database) Write(ctx context.Context, data []map[string]any) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	for _, record := range data {
		if _, err := tx.Exec(ctx, `
			INSERT INTO property (time_stamp, unit_of_measurement, value, identifier, slug)
			VALUES ($1, $2, $3, $4, $5)
		`, record["timestamp"], record["unit_of_measurement"], record["value"], record["identifier"], record["slug"]); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (db *Database) RegisterDevice(device *model.Device) error {
	_, err := db.pool.Exec(context.Background(), `
		INSERT INTO device (id, model, serial_number)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING;`, device.ID, device.Model, device.SerialNumber)
	return err
}

// WriteProductionStats upserts daily production. A nil inverterID stores the
// figures of the whole plant.
func (db *Database) WriteProductionStats(ctx context.Context, plantID int, inverterID *int, stats []model.ProductionStats) error {
	if len(stats) == 0 {
		return nil
	}
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	for _, s := range stats {
		if _, err := tx.Exec(ctx, `
			INSERT INTO production_stat (plant_id, inverter_id, day, production, prognostic, updated_at)
			VALUES ($1, $2, $3, $4, $5, now())
			ON CONFLICT (plant_id, inverter_id, day) DO UPDATE SET
				production = EXCLUDED.production,
				prognostic = EXCLUDED.prognostic,
				updated_at = now()
		`, plantID, inverterKey(inverterID), s.Date, s.Production, s.Prognostic); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// inverterKey maps the whole plant to 0 so it can take part in the unique key.
func inverterKey(inverterID *int) int {
	if inverterID == nil {
		return 0
	}
	return *inverterID
}
