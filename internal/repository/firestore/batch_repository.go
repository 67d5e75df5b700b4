package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"

	"github.com/mamadbah2/megg/internal/domain/models"
)

const batchesCollection = "batches"

// BatchRepository reads and updates batch statistic documents.
type BatchRepository struct {
	client *firestore.Client
	logger *zap.Logger
	now    func() time.Time
}

// NewBatchRepository wires a Firestore backed batch repository.
func NewBatchRepository(client *firestore.Client, logger *zap.Logger) *BatchRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchRepository{client: client, logger: logger, now: time.Now}
}

// FetchBatchRecords returns every batch owned by accountID. An empty account
// id yields an empty slice without touching the store.
func (r *BatchRepository) FetchBatchRecords(ctx context.Context, accountID string) ([]models.RawBatchRecord, error) {
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return []models.RawBatchRecord{}, nil
	}

	iter := r.client.Collection(batchesCollection).Where("accountId", "==", accountID).Documents(ctx)
	defer iter.Stop()

	records := []models.RawBatchRecord{}
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterate batches: %w", err)
		}
		records = append(records, decodeBatch(doc.Ref.ID, doc.Data()))
	}

	r.logger.Debug("batch documents fetched", zap.String("account_id", accountID), zap.Int("count", len(records)))
	return records, nil
}

// FetchBatchRecord returns the batch of accountID whose id, name or document
// key equals batchKey, or nil when there is none.
func (r *BatchRepository) FetchBatchRecord(ctx context.Context, accountID, batchKey string) (*models.RawBatchRecord, error) {
	records, err := r.FetchBatchRecords(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if record, ok := findRecord(records, batchKey); ok {
		return &record, nil
	}
	return nil, nil
}

// UpdateBatchStatus sets the status and bumps updatedAt of the matching batch.
func (r *BatchRepository) UpdateBatchStatus(ctx context.Context, accountID, batchKey string, status models.Status) error {
	records, err := r.FetchBatchRecords(ctx, accountID)
	if err != nil {
		return err
	}
	record, ok := findRecord(records, batchKey)
	if !ok {
		return fmt.Errorf("%w: %s", models.ErrBatchNotFound, batchKey)
	}

	_, err = r.client.Collection(batchesCollection).Doc(record.DocID).Update(ctx, []firestore.Update{
		{Path: "status", Value: string(status)},
		{Path: "updatedAt", Value: r.now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("update batch %s status: %w", record.DocID, err)
	}
	return nil
}

func findRecord(records []models.RawBatchRecord, key string) (models.RawBatchRecord, bool) {
	for _, record := range records {
		if record.MatchesKey(key) {
			return record, true
		}
	}
	return models.RawBatchRecord{}, false
}
