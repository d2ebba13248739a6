package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/anicoll/sunweg-integration/internal/pkg/model"
)

func (db *Database) GetProperties(ctx context.Context, identifier, slug string, from, to *time.Time) (model.Properties, error) {
	if from == nil || to == nil {
		f := time.Now().AddDate(0, 0, -2)
		t := time.Now()
		from, to = &f, &t
	}
	const query = `
	SELECT id, time_stamp, unit_of_measurement, value, identifier, slug
	FROM property
	WHERE identifier = $1 AND slug = $2 AND time_stamp BETWEEN $3 AND $4
	ORDER BY time_stamp DESC;
	`

	rows, err := db.pool.Query(ctx, query, identifier, slug, *from, *to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanProperties(rows)
}

func scanProperties(rows pgx.Rows) (model.Properties, error) {
	var properties model.Properties
	for rows.Next() {
		var property model.Property
		if err := rows.Scan(&property.Id, &property.TimeStamp, &property.Unit, &property.Value, &property.Identifier, &property.Slug); err != nil {
			return nil, err
		}
		properties = append(properties, property)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return properties, nil
}

func (db *Database) GetLatestProperties(ctx context.Context) (model.Properties, error) {
	const query = `
	SELECT DISTINCT ON (identifier, slug) id, time_stamp, unit_of_measurement, value, identifier, slug
	FROM property
	ORDER BY identifier, slug, time_stamp DESC;
	`

	rows, err := db.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanProperties(rows)
}

// GetProductionStats returns the stored daily production between from and to
// inclusive, oldest first. A nil inverterID selects the whole plant.
func (db *Database) GetProductionStats(ctx context.Context, plantID int, inverterID *int, from, to time.Time) ([]model.StoredProductionStats, error) {
	const query = `
	SELECT plant_id, inverter_id, day, production, prognostic
	FROM production_stat
	WHERE plant_id = $1 AND inverter_id = $2 AND day BETWEEN $3 AND $4
	ORDER BY day;
	`

	rows, err := db.pool.Query(ctx, query, plantID, inverterKey(inverterID), from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := []model.StoredProductionStats{}
	for rows.Next() {
		var (
			s        model.StoredProductionStats
			inverter int
		)
		if err := rows.Scan(&s.PlantID, &inverter, &s.Date, &s.Production, &s.Prognostic); err != nil {
			return nil, err
		}
		if inverter != 0 {
			s.InverterID = &inverter
		}
		s.Date = s.Date.UTC()
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
