// Package service provides business logic for CSV ingestion and record
// updates.
package service

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spark-tracker/video-ingestion-go/internal/ingest"
	"github.com/spark-tracker/video-ingestion-go/internal/metrics"
	"github.com/spark-tracker/video-ingestion-go/internal/models"
	"github.com/spark-tracker/video-ingestion-go/internal/repository"
	"github.com/spark-tracker/video-ingestion-go/pkg/logger"
)

// IngestionService runs the CSV ingestion pipeline: column resolution, row
// parsing, duplicate classification, and the batch write.
type IngestionService struct {
	repo      repository.RecordRepository
	publisher EventPublisher
	metrics   metrics.Recorder
}

// NewIngestionService creates a new IngestionService. publisher and recorder
// may be nil; eventing and instrumentation are then skipped.
func NewIngestionService(repo repository.RecordRepository, publisher EventPublisher, recorder metrics.Recorder) *IngestionService {
	return &IngestionService{
		repo:      repo,
		publisher: publisher,
		metrics:   recorder,
	}
}

// Ingest processes one uploaded CSV file for the given owner and returns the
// upload summary. File-level failures (missing column, too few rows) reject
// the whole upload; row-level failures are collected into the summary and do
// not stop later rows.
func (s *IngestionService) Ingest(ctx context.Context, ownerID string, r io.Reader) (*models.UploadSummaryDTO, error) {
	start := time.Now()

	// Step 1: Tokenize and resolve columns (once per file).
	header, lines, err := ingest.ReadRows(r)
	if err != nil {
		s.rejectUpload()
		return nil, &ValidationError{Message: err.Error()}
	}

	cols, err := ingest.ResolveColumns(header)
	if err != nil {
		s.rejectUpload()
		logger.Log.Warn("Upload rejected: unresolved columns",
			zap.Error(err),
			zap.String("ownerId", ownerID),
		)
		return nil, &ValidationError{Message: err.Error()}
	}

	// Step 2: Parse every data line, collecting row-level errors.
	var parsed []*ingest.ParsedRow
	var errorMessages []string
	for _, line := range lines {
		row, err := ingest.ParseRow(line.Fields, line.Number, cols)
		if err != nil {
			errorMessages = append(errorMessages, err.Error())
			continue
		}
		parsed = append(parsed, row)
	}

	// Step 3: Classify parsed rows against stored records.
	duplicates, newRows, err := s.classify(ctx, ownerID, parsed)
	if err != nil {
		logger.Log.Error("Duplicate classification failed",
			zap.Error(err),
			zap.String("ownerId", ownerID),
		)
		return nil, &ProcessingError{Message: "failed to check for duplicates", Cause: err}
	}

	// Step 4: Batch write the new rows.
	records := make([]*models.VideoRecord, 0, len(newRows))
	for _, row := range newRows {
		records = append(records, models.NewVideoRecord(ownerID, row.Name, row.PostDate, row.CreatorUsername, row.GMV))
	}

	inserted, err := s.repo.BulkInsert(ctx, records)
	if err != nil {
		logger.Log.Error("Batch write failed",
			zap.Error(err),
			zap.String("ownerId", ownerID),
			zap.Int("rows", len(records)),
		)
		return nil, &ProcessingError{Message: "failed to write records", Cause: err}
	}

	summary := &models.UploadSummaryDTO{
		NewEntries:    inserted,
		Duplicates:    len(duplicates),
		Errors:        len(errorMessages),
		Total:         len(lines),
		ErrorMessages: errorMessages,
	}

	s.recordUpload(start, summary)

	logger.Log.Info("Upload processed",
		zap.String("ownerId", ownerID),
		zap.Int("total", summary.Total),
		zap.Int("newEntries", summary.NewEntries),
		zap.Int("duplicates", summary.Duplicates),
		zap.Int("errors", summary.Errors),
	)

	// Step 5: Publish the completion event. The summary is already
	// committed; a publish failure is logged, never surfaced.
	if s.publisher != nil {
		event := &models.IngestionCompletedEvent{
			EventID:     uuid.New(),
			OwnerID:     ownerID,
			Summary:     *summary,
			CompletedAt: time.Now(),
		}
		if err := s.publisher.PublishIngestionCompleted(ctx, event); err != nil {
			logger.Log.Error("Failed to publish ingestion event",
				zap.Error(err),
				zap.String("eventId", event.EventID.String()),
			)
		}
	}

	return summary, nil
}

// classify splits parsed rows into duplicates and new rows by querying the
// store per row. Any store error aborts the whole classification with no
// partial result. Both output slices preserve input order.
func (s *IngestionService) classify(ctx context.Context, ownerID string, rows []*ingest.ParsedRow) (duplicates, newRows []*ingest.ParsedRow, err error) {
	for _, row := range rows {
		exists, err := s.repo.ExistsByIdentity(ctx, ownerID, row.Name, row.PostDate, row.CreatorUsername)
		if err != nil {
			return nil, nil, err
		}
		if exists {
			duplicates = append(duplicates, row)
		} else {
			newRows = append(newRows, row)
		}
	}
	return duplicates, newRows, nil
}

func (s *IngestionService) rejectUpload() {
	if s.metrics != nil {
		s.metrics.RecordUploadRejected()
	}
}

func (s *IngestionService) recordUpload(start time.Time, summary *models.UploadSummaryDTO) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordUpload(time.Since(start))
	s.metrics.RecordRowsInserted(summary.NewEntries)
	s.metrics.RecordRowsDuplicate(summary.Duplicates)
	s.metrics.RecordRowErrors(summary.Errors)
}
