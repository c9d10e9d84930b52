// Package scheduler drives periodic report generation.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/gridreport/gridreport-engine/pkg/services"
)

// Scheduler runs report generation on a cron spec. Each firing generates
// reports for the previous day.
type Scheduler struct {
	cron    *cron.Cron
	reports services.ReportService
	logger  *zap.Logger
}

// New creates a scheduler that is not yet started.
func New(reports services.ReportService, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		reports: reports,
		logger:  logger,
	}
}

// Start registers the job under spec (standard 5-field cron syntax) and
// begins running it.
func (s *Scheduler) Start(spec string) error {
	_, err := s.cron.AddFunc(spec, s.runOnce)
	if err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("report scheduler started", zap.String("spec", spec))
	return nil
}

// Stop waits for any running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	reportDate := previousDay(time.Now())
	if err := s.reports.GenerateForDate(ctx, reportDate); err != nil {
		s.logger.Error("scheduled report generation failed",
			zap.Time("report_date", reportDate),
			zap.Error(err))
		return
	}
	s.logger.Info("scheduled report generation finished", zap.Time("report_date", reportDate))
}

func previousDay(now time.Time) time.Time {
	yesterday := now.AddDate(0, 0, -1)
	return time.Date(yesterday.Year(), yesterday.Month(), yesterday.Day(), 0, 0, 0, 0, time.UTC)
}
