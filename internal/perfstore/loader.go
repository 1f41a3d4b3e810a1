// internal/perfstore/loader.go

package perfstore

import (
	"context"
	"database/sql"
	"fmt"

	apperrors "livestock-advisor/internal/common/errors"
	"livestock-advisor/internal/models"
)

// DatasetLoader loads the full performance table for one production line.
// Implementations return a typed load failure; they never return a partially
// valid dataset.
type DatasetLoader interface {
	LoadLine(ctx context.Context, line string) ([]models.PerfRecord, error)
}

// PostgresLoader reads performance reference rows from Postgres. Rows are
// keyed by (line, sex, unit, age_days); every key column must be populated
// or the whole dataset is rejected.
type PostgresLoader struct {
	db    *sql.DB
	table string
}

func NewPostgresLoader(db *sql.DB, table string) *PostgresLoader {
	return &PostgresLoader{db: db, table: table}
}

func (l *PostgresLoader) LoadLine(ctx context.Context, line string) ([]models.PerfRecord, error) {
	query := fmt.Sprintf(
		`SELECT line, sex, unit, age_days, weight_g, daily_gain_g, fcr_cum, source_doc, page
		 FROM %s WHERE line = $1 ORDER BY sex, unit, age_days`, l.table)

	rows, err := l.db.QueryContext(ctx, query, line)
	if err != nil {
		return nil, apperrors.NewDatasetLoadFailedError(line, err)
	}
	defer rows.Close()

	var records []models.PerfRecord
	for rows.Next() {
		var rec models.PerfRecord
		var sex, unit string
		if err := rows.Scan(&rec.Line, &sex, &unit, &rec.AgeDays, &rec.WeightG,
			&rec.DailyGain, &rec.FCRCum, &rec.SourceDoc, &rec.Page); err != nil {
			return nil, apperrors.NewDatasetLoadFailedError(line, err)
		}
		if rec.Line == "" || sex == "" || unit == "" || rec.AgeDays < 0 {
			return nil, apperrors.NewDatasetInvalidError(line, "row with empty key column")
		}
		rec.Sex = CanonicalSex(sex)
		rec.Unit = CanonicalUnit(unit)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatasetLoadFailedError(line, err)
	}
	return records, nil
}
