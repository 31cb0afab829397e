// Package stats writes the daily system_stats rollup on a cron schedule.
package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/parking-reservation/internal/metrics"
	"github.com/iliyamo/parking-reservation/internal/model"
	"github.com/iliyamo/parking-reservation/internal/service"
)

// DefaultSpec runs the rollup five minutes after midnight UTC.
const DefaultSpec = "5 0 * * *"

// Repo is the subset of the repository the rollup reads and writes.
type Repo interface {
	ListLots(ctx context.Context) ([]model.ParkingLot, error)
	OccupiedCounts(ctx context.Context) (map[uint64]int, error)
	RevenueBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
	ReservationsStartedBetween(ctx context.Context, from, to time.Time) (int, error)
	UpsertSystemStats(ctx context.Context, s *model.SystemStats) error
}

// Rollup aggregates one UTC day into a system_stats row.
type Rollup struct {
	repo    Repo
	log     logrus.FieldLogger
	now     func() time.Time
	timeout time.Duration
	cron    *cron.Cron
}

func NewRollup(repo Repo, log logrus.FieldLogger) *Rollup {
	return &Rollup{
		repo:    repo,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
		timeout: time.Minute,
	}
}

// Start schedules the rollup of the previous day.  An empty spec uses
// DefaultSpec.
func (r *Rollup) Start(spec string) error {
	if spec == "" {
		spec = DefaultSpec
	}
	c := cron.New(cron.WithLocation(time.UTC))
	if _, err := c.AddFunc(spec, r.runYesterday); err != nil {
		return fmt.Errorf("schedule stats rollup %q: %w", spec, err)
	}
	r.cron = c
	c.Start()
	r.log.WithField("spec", spec).Info("stats rollup scheduled")
	return nil
}

// Stop halts the scheduler and waits for a running rollup to finish or ctx
// to expire.
func (r *Rollup) Stop(ctx context.Context) {
	if r.cron == nil {
		return
	}
	select {
	case <-r.cron.Stop().Done():
	case <-ctx.Done():
	}
}

func (r *Rollup) runYesterday() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	day := r.now().AddDate(0, 0, -1)
	if _, err := r.RunDay(ctx, day); err != nil {
		r.log.WithError(err).WithField("day", day.Format(time.DateOnly)).Error("stats rollup failed")
	}
}

// RunDay computes and stores the rollup of the UTC day containing day.
// Occupancy is the current average across lots since spot history is not
// kept.
func (r *Rollup) RunDay(ctx context.Context, day time.Time) (*model.SystemStats, error) {
	st, err := r.compute(ctx, day)
	if err == nil {
		err = r.repo.UpsertSystemStats(ctx, st)
	}
	metrics.RecordRollup(err)
	if err != nil {
		return nil, err
	}
	r.log.WithFields(logrus.Fields{
		"day":          st.Date.Format(time.DateOnly),
		"revenue":      st.TotalRevenue.StringFixed(2),
		"reservations": st.TotalReservations,
	}).Info("stats rollup written")
	return st, nil
}

func (r *Rollup) compute(ctx context.Context, day time.Time) (*model.SystemStats, error) {
	day = day.UTC()
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	revenue, err := r.repo.RevenueBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("revenue: %w", err)
	}
	count, err := r.repo.ReservationsStartedBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("reservations: %w", err)
	}
	lots, err := r.repo.ListLots(ctx)
	if err != nil {
		return nil, fmt.Errorf("lots: %w", err)
	}
	occupied, err := r.repo.OccupiedCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("occupancy: %w", err)
	}

	var avg float64
	if len(lots) > 0 {
		var sum float64
		for _, l := range lots {
			sum += service.OccupancyRate(occupied[l.ID], l.MaxSpots)
		}
		avg = sum / float64(len(lots))
	}
	return &model.SystemStats{
		Date:                 from,
		TotalRevenue:         revenue,
		TotalReservations:    count,
		AverageOccupancyRate: avg,
	}, nil
}
