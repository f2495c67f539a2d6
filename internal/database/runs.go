package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Alias1177/Regimes/internal/regime"
)

// Run is a stored segmentation of one symbol
type Run struct {
	ID        int64
	Symbol    string
	Options   regime.Options
	Points    int
	CreatedAt time.Time
	Regimes   []regime.Regime
}

type runRow struct {
	ID        int64     `db:"id"`
	Symbol    string    `db:"symbol"`
	Options   []byte    `db:"options"`
	Points    int       `db:"points"`
	CreatedAt time.Time `db:"created_at"`
}

type segmentRow struct {
	Start      int           `db:"start_idx"`
	End        int           `db:"end_idx"`
	Direction  string        `db:"direction"`
	Label      sql.NullInt16 `db:"label"`
	StartValue float64       `db:"start_value"`
	EndValue   float64       `db:"end_value"`
	Flipped    bool          `db:"flipped"`
}

// labelValue stores up as 1, down as 0 and neutral as NULL
func labelValue(l regime.Label) sql.NullInt16 {
	v, ok := l.Bool()
	if !ok {
		return sql.NullInt16{}
	}
	if v {
		return sql.NullInt16{Int16: 1, Valid: true}
	}
	return sql.NullInt16{Int16: 0, Valid: true}
}

func (s segmentRow) regime() regime.Regime {
	r := regime.Regime{
		Start:      s.Start,
		End:        s.End,
		Direction:  regime.Down,
		Label:      regime.LabelNeutral,
		StartValue: s.StartValue,
		EndValue:   s.EndValue,
		Flipped:    s.Flipped,
	}
	if s.Direction == regime.Up.String() {
		r.Direction = regime.Up
	}
	if s.Label.Valid {
		r.Label = regime.LabelDown
		if s.Label.Int16 == 1 {
			r.Label = regime.LabelUp
		}
	}
	return r
}

// SaveRun stores the regimes of one segmentation of symbol and returns the run id
func (db *DB) SaveRun(ctx context.Context, symbol string, opts regime.Options, points int, regimes []regime.Regime) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, db.timeout)
	defer cancel()

	optionsJSON, err := json.Marshal(opts)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal options: %w", err)
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO regime_runs (symbol, mode, options, points)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		symbol, opts.Mode(), optionsJSON, points).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	for _, r := range regimes {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO regime_segments
			(run_id, start_idx, end_idx, direction, label, start_value, end_value, flipped)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			id, r.Start, r.End, r.Direction.String(), labelValue(r.Label), r.StartValue, r.EndValue, r.Flipped)
		if err != nil {
			return 0, fmt.Errorf("failed to insert regime [%d, %d): %w", r.Start, r.End, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}

	db.logger.Info().Str("symbol", symbol).Int64("run_id", id).Int("regimes", len(regimes)).Msg("Saved run")
	return id, nil
}

// LatestRun returns the most recent run of symbol, nil when there is none
func (db *DB) LatestRun(ctx context.Context, symbol string) (*Run, error) {
	ctx, cancel := context.WithTimeout(ctx, db.timeout)
	defer cancel()

	var row runRow
	err := db.GetContext(ctx, &row, `
		SELECT id, symbol, options, points, created_at
		FROM regime_runs
		WHERE symbol = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1`, symbol)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}

	run := &Run{ID: row.ID, Symbol: row.Symbol, Points: row.Points, CreatedAt: row.CreatedAt}
	if err := json.Unmarshal(row.Options, &run.Options); err != nil {
		return nil, fmt.Errorf("failed to decode run options: %w", err)
	}

	var segments []segmentRow
	err = db.SelectContext(ctx, &segments, `
		SELECT start_idx, end_idx, direction, label, start_value, end_value, flipped
		FROM regime_segments
		WHERE run_id = $1
		ORDER BY start_idx`, row.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run regimes: %w", err)
	}

	run.Regimes = make([]regime.Regime, 0, len(segments))
	for _, s := range segments {
		run.Regimes = append(run.Regimes, s.regime())
	}
	return run, nil
}
