package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mamadbah2/megg/internal/domain/models"
)

const (
	digestTimeout  = 2 * time.Minute
	maxParallelism = 4
)

// ReportBuilder produces the digest snapshot of one account.
type ReportBuilder interface {
	Report(ctx context.Context, accountID string, now time.Time) (models.InventoryReport, error)
}

// ReportStore persists digest snapshots.
type ReportStore interface {
	SaveInventoryReport(ctx context.Context, report models.InventoryReport) error
}

// DigestSheet appends digest rows to a spreadsheet.
type DigestSheet interface {
	AppendRows(ctx context.Context, sheetRange string, rows [][]interface{}) error
}

// Notifier sends the digest text to a recipient.
type Notifier interface {
	SendText(ctx context.Context, to, body string) (string, error)
}

// Options configures the digest job.
type Options struct {
	Schedule    string
	Location    *time.Location
	AccountIDs  []string
	Recipient   string
	DigestRange string
}

// Scheduler manages scheduled inventory digests.
type Scheduler struct {
	cron     *cron.Cron
	opts     Options
	reports  ReportBuilder
	store    ReportStore
	sheet    DigestSheet
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewScheduler creates a new scheduler instance. sheet and notifier are optional.
func NewScheduler(opts Options, reports ReportBuilder, store ReportStore, sheet DigestSheet, notifier Notifier, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}

	// Standard 5-field cron parser, evaluated in the configured timezone.
	c := cron.New(cron.WithLocation(opts.Location))

	return &Scheduler{
		cron:     c,
		opts:     opts,
		reports:  reports,
		store:    store,
		sheet:    sheet,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Start registers the digest job and starts the cron runner.
func (s *Scheduler) Start() error {
	if len(s.opts.AccountIDs) == 0 {
		s.logger.Warn("no report accounts configured, inventory digest disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(s.opts.Schedule, s.runScheduled); err != nil {
		return fmt.Errorf("schedule inventory digest %q: %w", s.opts.Schedule, err)
	}

	s.logger.Info("starting scheduler", zap.String("schedule", s.opts.Schedule), zap.Int("accounts", len(s.opts.AccountIDs)))
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running digest to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runScheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), digestTimeout)
	defer cancel()

	if err := s.RunOnce(ctx); err != nil {
		s.logger.Error("inventory digest finished with errors", zap.Error(err))
		return
	}
	s.logger.Info("inventory digest completed")
}

// RunOnce builds, stores and delivers the digest of every configured account.
// A failing account does not stop the others; all failures are joined.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	now := s.now().In(s.opts.Location)
	errs := make([]error, len(s.opts.AccountIDs))

	var g errgroup.Group
	g.SetLimit(maxParallelism)
	for i, accountID := range s.opts.AccountIDs {
		i, accountID := i, accountID
		g.Go(func() error {
			if err := s.digestAccount(ctx, accountID, now); err != nil {
				s.logger.Error("inventory digest failed", zap.String("account_id", accountID), zap.Error(err))
				errs[i] = fmt.Errorf("account %s: %w", accountID, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}

func (s *Scheduler) digestAccount(ctx context.Context, accountID string, now time.Time) error {
	report, err := s.reports.Report(ctx, accountID, now)
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}

	if err := s.store.SaveInventoryReport(ctx, report); err != nil {
		return fmt.Errorf("save report: %w", err)
	}

	if s.sheet != nil && s.opts.DigestRange != "" {
		if err := s.sheet.AppendRows(ctx, s.opts.DigestRange, [][]interface{}{digestRow(report)}); err != nil {
			return fmt.Errorf("append digest row: %w", err)
		}
	}

	if s.notifier != nil && s.opts.Recipient != "" {
		if _, err := s.notifier.SendText(ctx, s.opts.Recipient, FormatDigest(report)); err != nil {
			return fmt.Errorf("send digest: %w", err)
		}
	}

	s.logger.Debug("inventory digest delivered", zap.String("account_id", accountID))
	return nil
}

// FormatDigest renders a report as a short text message.
func FormatDigest(report models.InventoryReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Inventory digest for %s (%s)\n", report.AccountID, report.GeneratedAt.Format("2006-01-02"))
	fmt.Fprintf(&b, "Batches: %d (%d active)\n", report.Metrics.TotalBatches, report.Metrics.ActiveBatches)
	fmt.Fprintf(&b, "Total eggs: %d\n", report.Metrics.TotalEggs)
	fmt.Fprintf(&b, "Avg defect rate: %s%%", report.Metrics.AvgDefectRate)

	if n := len(report.Trends.ProductionTrend); n > 0 {
		latest := report.Trends.ProductionTrend[n-1]
		fmt.Fprintf(&b, "\nLatest day %s: %.0f eggs", latest.DateLabel, latest.Value)
		if report.Trends.ProductionChange != 0 {
			fmt.Fprintf(&b, " (%+.1f%%)", report.Trends.ProductionChange)
		}
	}
	return b.String()
}

func digestRow(report models.InventoryReport) []interface{} {
	return []interface{}{
		report.GeneratedAt.Format(time.RFC3339),
		report.AccountID,
		report.Metrics.TotalBatches,
		report.Metrics.ActiveBatches,
		report.Metrics.TotalEggs,
		report.Metrics.AvgDefectRatePercent,
		report.Trends.ProductionChange,
	}
}
