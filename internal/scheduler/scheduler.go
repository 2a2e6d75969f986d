package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Jobs are the triggers the scheduler fires. The scheduler owns no business
// state; each func is a closure over the owning service. Errors never
// propagate out of a job: they are logged and the next tick runs regardless.
type Jobs struct {
	FetchAllPrices func(ctx context.Context) error
	FetchFxRate    func(ctx context.Context) error
	RecordKimchi   func(ctx context.Context) error
	SyncCatalog    func(ctx context.Context) error
}

// 6-field schedules, seconds first.
const (
	priceSchedule   = "*/2 * * * * *"
	fxSchedule      = "*/10 * * * * *"
	catalogSchedule = "0 */10 * * * *"
	kimchiSchedule  = "0 * * * * *"
)

// jobTimeout bounds one trigger's work; a hung upstream must not pile up
// overlapping invocations forever.
const jobTimeout = 90 * time.Second

type Scheduler struct {
	cron *cron.Cron
	jobs Jobs
}

func New(jobs Jobs) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds()),
		jobs: jobs,
	}
}

// Start primes each pipeline once in dependency order (catalog before prices
// before FX), then engages the cron entries. Prime-run failures are logged
// and do not abort startup.
func (s *Scheduler) Start(ctx context.Context) error {
	s.prime(ctx)

	entries := []struct {
		name string
		run  func(ctx context.Context) error
		spec string
	}{
		{name: "price collection", run: s.jobs.FetchAllPrices, spec: priceSchedule},
		{name: "fx refresh", run: s.jobs.FetchFxRate, spec: fxSchedule},
		{name: "catalog sync", run: s.jobs.SyncCatalog, spec: catalogSchedule},
		{name: "kimchi snapshot", run: s.jobs.RecordKimchi, spec: kimchiSchedule},
	}

	for _, e := range entries {
		if _, err := s.cron.AddFunc(e.spec, s.wrap(e.name, e.run)); err != nil {
			return err
		}
	}

	s.cron.Start()
	slog.Info("scheduler started", "jobs", len(entries))
	return nil
}

// Stop halts new triggers and waits for in-flight jobs to complete.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	slog.Info("scheduler stopped")
}

func (s *Scheduler) prime(ctx context.Context) {
	for _, p := range []struct {
		name string
		run  func(ctx context.Context) error
	}{
		{name: "catalog sync", run: s.jobs.SyncCatalog},
		{name: "price collection", run: s.jobs.FetchAllPrices},
		{name: "fx refresh", run: s.jobs.FetchFxRate},
	} {
		if err := p.run(ctx); err != nil {
			slog.Error("startup prime run failed", "error", err, "job", p.name)
		}
	}
}

func (s *Scheduler) wrap(name string, run func(ctx context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		if err := run(ctx); err != nil {
			slog.Error("scheduled job failed", "error", err, "job", name)
		}
	}
}
