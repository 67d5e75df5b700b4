package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/megg/internal/domain/models"
)

// ErrBatchNotFound is returned when a requested batch does not exist.
var ErrBatchNotFound = models.ErrBatchNotFound

// ErrInvalidStatus indicates a status update with an unsupported value.
var ErrInvalidStatus = errors.New("status must be \"active\" or \"not active\"")

// BatchFetcher reads raw batch documents scoped to an account.
type BatchFetcher interface {
	FetchBatchRecords(ctx context.Context, accountID string) ([]models.RawBatchRecord, error)
	FetchBatchRecord(ctx context.Context, accountID, batchKey string) (*models.RawBatchRecord, error)
	UpdateBatchStatus(ctx context.Context, accountID, batchKey string, status models.Status) error
}

// FilterStatePersistence stores the batch list view state of an account.
type FilterStatePersistence interface {
	LoadViewState(ctx context.Context, accountID string) (models.ViewState, bool, error)
	SaveViewState(ctx context.Context, accountID string, state models.ViewState) error
}

// Service runs the batch pipeline over documents fetched for an account.
type Service struct {
	fetcher    BatchFetcher
	views      FilterStatePersistence
	aggregator *Aggregator
	logger     *zap.Logger
}

// NewService wires a new inventory service. views may be nil, in which case
// view state is neither loaded nor saved.
func NewService(fetcher BatchFetcher, views FilterStatePersistence, aggregator *Aggregator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if aggregator == nil {
		aggregator = NewAggregator(time.UTC)
	}
	return &Service{fetcher: fetcher, views: views, aggregator: aggregator, logger: logger}
}

// ListSummaries returns every batch of the account, most recently updated first.
func (s *Service) ListSummaries(ctx context.Context, accountID string) ([]models.BatchSummary, error) {
	records, err := s.fetcher.FetchBatchRecords(ctx, strings.TrimSpace(accountID))
	if err != nil {
		s.logger.Error("failed to fetch batch records", zap.String("account_id", accountID), zap.Error(err))
		return nil, fmt.Errorf("fetch batches for account %s: %w", accountID, err)
	}

	summaries := s.aggregator.AggregateAll(records)
	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := summaries[i], summaries[j]
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return a.BatchNumber > b.BatchNumber
	})

	s.logger.Debug("batch summaries loaded", zap.String("account_id", accountID), zap.Int("count", len(summaries)))
	return summaries, nil
}

// GetSummary returns the summary of one batch matched by id, name or storage key.
func (s *Service) GetSummary(ctx context.Context, accountID, batchKey string) (models.BatchSummary, error) {
	record, err := s.fetcher.FetchBatchRecord(ctx, strings.TrimSpace(accountID), batchKey)
	if err != nil {
		s.logger.Error("failed to fetch batch record", zap.String("account_id", accountID), zap.String("batch", batchKey), zap.Error(err))
		return models.BatchSummary{}, fmt.Errorf("fetch batch %s: %w", batchKey, err)
	}
	if record == nil {
		return models.BatchSummary{}, ErrBatchNotFound
	}
	return s.aggregator.Aggregate(*record), nil
}

// Location returns the timezone used for display strings and day boundaries.
func (s *Service) Location() *time.Location {
	return s.aggregator.Location()
}

// Filtered returns the account's batches narrowed and ordered by the view's filters and sort.
func (s *Service) Filtered(ctx context.Context, accountID string, view models.ViewState) ([]models.BatchSummary, error) {
	summaries, err := s.ListSummaries(ctx, accountID)
	if err != nil {
		return nil, err
	}
	view = NormalizeView(view)
	return Apply(summaries, view.Filters, view.Sort, s.aggregator.Location()), nil
}

// Browse returns the requested page of the filtered and sorted batch list.
func (s *Service) Browse(ctx context.Context, accountID string, view models.ViewState) (models.Page[models.BatchSummary], error) {
	filtered, err := s.Filtered(ctx, accountID, view)
	if err != nil {
		return models.Page[models.BatchSummary]{}, err
	}
	view = NormalizeView(view)
	return Paginate(filtered, view.CurrentPage, view.PageSize), nil
}

// FleetMetrics computes portfolio metrics over the account's batches.
func (s *Service) FleetMetrics(ctx context.Context, accountID string) (models.FleetMetrics, error) {
	summaries, err := s.ListSummaries(ctx, accountID)
	if err != nil {
		return models.FleetMetrics{}, err
	}
	return ComputeFleetMetrics(summaries), nil
}

// Trends computes the daily defect and production series of the account.
func (s *Service) Trends(ctx context.Context, accountID string) (models.Trends, error) {
	summaries, err := s.ListSummaries(ctx, accountID)
	if err != nil {
		return models.Trends{}, err
	}
	return ComputeTrends(summaries, s.aggregator.Location()), nil
}

// Compare looks up the selected batches by their resolved batch number and compares them.
func (s *Service) Compare(ctx context.Context, accountID string, batchIDs []string) ([]models.ComparisonField, []models.BatchSummary, error) {
	if len(batchIDs) > MaxComparedBatches {
		return nil, nil, ErrComparisonSize
	}
	summaries, err := s.ListSummaries(ctx, accountID)
	if err != nil {
		return nil, nil, err
	}

	byID := make(map[models.BatchID]models.BatchSummary, len(summaries))
	for _, summary := range summaries {
		if _, seen := byID[summary.BatchNumber]; !seen {
			byID[summary.BatchNumber] = summary
		}
	}

	selected := make([]models.BatchSummary, 0, len(batchIDs))
	for _, id := range batchIDs {
		summary, ok := byID[models.BatchID(id)]
		if !ok {
			return nil, nil, fmt.Errorf("%w: %s", ErrBatchNotFound, id)
		}
		selected = append(selected, summary)
	}

	fields, err := Compare(selected)
	if err != nil {
		return nil, nil, err
	}
	return fields, selected, nil
}

// SetStatus updates a batch status. An empty status toggles the current one.
func (s *Service) SetStatus(ctx context.Context, accountID, batchKey, status string) (models.Status, error) {
	var next models.Status
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "":
		current, err := s.GetSummary(ctx, accountID, batchKey)
		if err != nil {
			return "", err
		}
		next = models.StatusActive
		if current.Status == models.StatusActive {
			next = models.StatusNotActive
		}
	case string(models.StatusActive):
		next = models.StatusActive
	case string(models.StatusNotActive):
		next = models.StatusNotActive
	default:
		return "", ErrInvalidStatus
	}

	if err := s.fetcher.UpdateBatchStatus(ctx, strings.TrimSpace(accountID), batchKey, next); err != nil {
		s.logger.Error("failed to update batch status", zap.String("account_id", accountID), zap.String("batch", batchKey), zap.Error(err))
		return "", err
	}

	s.logger.Info("batch status updated", zap.String("account_id", accountID), zap.String("batch", batchKey), zap.String("status", string(next)))
	return next, nil
}

// LoadView returns the persisted view state of the account, or defaults.
func (s *Service) LoadView(ctx context.Context, accountID string) (models.ViewState, error) {
	if s.views == nil {
		return NormalizeView(models.ViewState{}), nil
	}
	state, found, err := s.views.LoadViewState(ctx, accountID)
	if err != nil {
		return models.ViewState{}, fmt.Errorf("load view state: %w", err)
	}
	if !found {
		state = models.ViewState{}
	}
	return NormalizeView(state), nil
}

// SaveView persists next, resetting the page when filters, sort or page size changed.
func (s *Service) SaveView(ctx context.Context, accountID string, next models.ViewState) (models.ViewState, error) {
	prev, err := s.LoadView(ctx, accountID)
	if err != nil {
		return models.ViewState{}, err
	}
	state := ChangeView(prev, next)
	if s.views == nil {
		return state, nil
	}
	if err := s.views.SaveViewState(ctx, accountID, state); err != nil {
		return models.ViewState{}, fmt.Errorf("save view state: %w", err)
	}
	return state, nil
}

// Report builds the digest snapshot for an account.
func (s *Service) Report(ctx context.Context, accountID string, now time.Time) (models.InventoryReport, error) {
	summaries, err := s.ListSummaries(ctx, accountID)
	if err != nil {
		return models.InventoryReport{}, err
	}
	return models.InventoryReport{
		AccountID:   accountID,
		GeneratedAt: now,
		Metrics:     ComputeFleetMetrics(summaries),
		Trends:      ComputeTrends(summaries, s.aggregator.Location()),
		CreatedAt:   now,
	}, nil
}
