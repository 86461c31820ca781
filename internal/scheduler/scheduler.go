package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/ceqc/internal/config"
	"github.com/mamadbah2/ceqc/internal/domain/models"
	"github.com/mamadbah2/ceqc/internal/service/query"
	"github.com/mamadbah2/ceqc/internal/service/reporting"
	"github.com/mamadbah2/ceqc/pkg/clients/notify"
)

// ReportBuilder assembles a report for a range.
type ReportBuilder interface {
	Build(ctx context.Context, r query.Range) (*models.Report, error)
}

// Scheduler renders the daily report on a cron schedule.
type Scheduler struct {
	cron     *cron.Cron
	reports  ReportBuilder
	notifier notify.Client
	cfg      config.ReportingConfig
	location *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

// NewScheduler creates a new scheduler instance. notifier may be nil.
func NewScheduler(cfg config.ReportingConfig, reports ReportBuilder, notifier notify.Client, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		reports:  reports,
		notifier: notifier,
		cfg:      cfg,
		location: loc,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Start registers the daily job and starts the cron loop. An empty schedule
// disables it.
func (s *Scheduler) Start() error {
	if s.cfg.CronSchedule == "" {
		s.logger.Info("daily report disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.runDaily); err != nil {
		return fmt.Errorf("schedule daily report %q: %w", s.cfg.CronSchedule, err)
	}
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.CronSchedule), zap.String("timezone", s.location.String()))
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runDaily() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	day := s.now().In(s.location).Format(models.DateLayout)
	if _, err := s.RunDay(ctx, day); err != nil {
		s.logger.Error("daily report failed", zap.String("day", day), zap.Error(err))
	}
}

// RunDay builds, archives and delivers the report of one day. Delivery
// failures are logged and do not fail the run.
func (s *Scheduler) RunDay(ctx context.Context, day string) (string, error) {
	s.logger.Info("generating daily report", zap.String("day", day))

	report, err := s.reports.Build(ctx, query.Day(day))
	if err != nil {
		return "", fmt.Errorf("build report: %w", err)
	}
	dir, err := reporting.Save(report, s.cfg.OutputDir)
	if err != nil {
		return "", err
	}
	s.logger.Info("daily report written", zap.String("dir", dir))

	if s.notifier == nil {
		return dir, nil
	}
	msg := notify.ReportMessage{
		Title:     "Daily QC report " + day,
		Range:     report.Caption,
		Summary:   report.Summary,
		Location:  dir,
		Generated: report.GeneratedAt.Format(time.RFC3339),
	}
	if err := s.notifier.SendReport(ctx, msg); err != nil {
		s.logger.Error("failed to deliver daily report", zap.Error(err))
	} else {
		s.logger.Info("daily report delivered")
	}
	return dir, nil
}
