package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Alias1177/Regimes/internal/api/twelvedata"
	"github.com/Alias1177/Regimes/internal/database"
	"github.com/Alias1177/Regimes/internal/regime"
	"github.com/Alias1177/Regimes/models"
)

func fetchCmd(a *app) *cobra.Command {
	var (
		seg      segmentFlags
		symbol   string
		interval string
		count    int
		days     int
		fromDB   bool
		save     bool
		out      string
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch a symbol from Twelve Data (or PostgreSQL) and segment its closes",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			flags := cmd.Flags()
			if flags.Changed("symbol") {
				a.cfg.Symbol = symbol
			}
			if flags.Changed("interval") {
				a.cfg.Interval = interval
			}
			if flags.Changed("count") {
				a.cfg.CandleCount = count
			}

			opts, err := seg.apply(cmd, a.cfg.Segment).Options()
			if err != nil {
				return err
			}

			var db *database.DB
			if fromDB || save {
				db, err = database.New(ctx, a.cfg.Database())
				if err != nil {
					return err
				}
				defer db.Close()
			}

			var points []models.Point
			switch {
			case fromDB:
				points, err = db.Series(ctx, a.cfg.Symbol)
			case days > 0:
				points, err = historical(ctx, a.twelveData(), a.cfg.Symbol, days)
			default:
				points, err = a.twelveData().Series(ctx, a.cfg.Symbol)
			}
			if err != nil {
				return fmt.Errorf("loading %s: %w", a.cfg.Symbol, err)
			}
			log.Info().Str("symbol", a.cfg.Symbol).Int("points", len(points)).Msg("Loaded series")

			regimes, err := a.segment(a.cfg.Symbol, models.Values(points), opts)
			if err != nil {
				return err
			}

			if db != nil {
				prev, err := db.LatestRun(ctx, a.cfg.Symbol)
				if err != nil {
					return err
				}
				logPreviousRun(prev, regimes)
			}

			if save {
				if !fromDB {
					if _, err := db.SavePoints(ctx, a.cfg.Symbol, points); err != nil {
						return err
					}
				}
				if _, err := db.SaveRun(ctx, a.cfg.Symbol, opts, len(points), regimes); err != nil {
					return err
				}
			}

			if out == "" {
				return nil
			}
			return writeLabels(out, a.cfg.Symbol, points, regimes)
		},
	}

	seg.register(cmd)
	cmd.Flags().StringVar(&symbol, "symbol", "", "symbol to fetch (overrides SYMBOL)")
	cmd.Flags().StringVar(&interval, "interval", "", "candle interval (overrides INTERVAL)")
	cmd.Flags().IntVar(&count, "count", 0, "number of candles (overrides CANDLE_COUNT)")
	cmd.Flags().IntVar(&days, "days", 0, "fetch enough candles to cover this many days instead of --count")
	cmd.Flags().BoolVar(&fromDB, "from-db", false, "read the series from PostgreSQL instead of Twelve Data")
	cmd.Flags().BoolVar(&save, "save", false, "store the points and the run in PostgreSQL")
	cmd.Flags().StringVar(&out, "out", "", "write time and label per row to this CSV")
	return cmd
}

func (a *app) twelveData() *twelvedata.Client {
	return twelvedata.NewClient(twelvedata.ClientOptions{
		APIKey:         a.cfg.TwelveAPIKey,
		Interval:       a.cfg.Interval,
		CandleCount:    a.cfg.CandleCount,
		RequestTimeout: time.Duration(a.cfg.RequestTimeout) * time.Second,
		RequestsPerSec: a.cfg.RequestsPerSec,
		MaxRetries:     a.cfg.MaxRetries,
	})
}

func historical(ctx context.Context, client *twelvedata.Client, symbol string, days int) ([]models.Point, error) {
	candles, err := client.ForSymbol(symbol).GetHistoricalCandles(ctx, days)
	if err != nil {
		return nil, err
	}
	return twelvedata.Closes(candles)
}

// segment runs one series through the segmenter, recording metrics and
// logging a summary
func (a *app) segment(name string, values []float64, opts regime.Options) ([]regime.Regime, error) {
	start := time.Now()
	regimes, err := regime.Regimes(values, opts)
	a.metrics.ObserveSegment(opts.Mode(), time.Since(start), regimes, err)
	logSummary(name, regimes, err)
	if err != nil {
		return nil, fmt.Errorf("segmenting %s: %w", name, err)
	}
	return regimes, nil
}

func logPreviousRun(prev *database.Run, regimes []regime.Regime) {
	if prev == nil {
		log.Info().Msg("No previous run stored")
		return
	}
	s := regime.Summarize(prev.Regimes)
	log.Info().
		Int64("run_id", prev.ID).
		Time("created_at", prev.CreatedAt).
		Int("points", prev.Points).
		Int("regimes", s.Regimes).
		Bool("regime_changed", currentLabel(prev.Regimes) != currentLabel(regimes)).
		Msg("Previous run")
}

// currentLabel returns the label of the last regime, neutral when there is none
func currentLabel(regimes []regime.Regime) regime.Label {
	if len(regimes) == 0 {
		return regime.LabelNeutral
	}
	return regimes[len(regimes)-1].Label
}
