package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spark-tracker/video-ingestion-go/internal/models"
	"github.com/spark-tracker/video-ingestion-go/internal/repository"
	"github.com/spark-tracker/video-ingestion-go/pkg/logger"
)

// RecordService handles the record update paths outside ingestion.
type RecordService struct {
	repo repository.RecordRepository
}

// NewRecordService creates a new RecordService.
func NewRecordService(repo repository.RecordRepository) *RecordService {
	return &RecordService{repo: repo}
}

// List returns all records for the owner, newest first.
func (s *RecordService) List(ctx context.Context, ownerID string) ([]*models.VideoRecord, error) {
	records, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, &ProcessingError{Message: "failed to list records", Cause: err}
	}
	return records, nil
}

// SetStatus is the status-only update path.
func (s *RecordService) SetStatus(ctx context.Context, ownerID string, id uuid.UUID, status models.RecordStatus) (*models.VideoRecord, error) {
	if !status.Valid() {
		return nil, &ValidationError{Message: fmt.Sprintf("invalid status %q", status)}
	}

	return s.repo.UpdateStatus(ctx, ownerID, id, status)
}

// SetSparkCode is the spark-code-only update path. A non-empty code flips
// the record to authorized; the coupling is enforced here at update time,
// never retroactively on stored data.
func (s *RecordService) SetSparkCode(ctx context.Context, ownerID string, id uuid.UUID, sparkCode string) (*models.VideoRecord, error) {
	return s.repo.UpdateSparkCode(ctx, ownerID, id, sparkCode)
}

// Update is the combined edit of videoId, sparkCode, and status. Setting a
// non-empty spark code forces the status to authorized regardless of the
// requested value.
func (s *RecordService) Update(ctx context.Context, ownerID string, id uuid.UUID, videoID, sparkCode string, status models.RecordStatus) (*models.VideoRecord, error) {
	if !status.Valid() {
		return nil, &ValidationError{Message: fmt.Sprintf("invalid status %q", status)}
	}

	if sparkCode != "" && status != models.StatusAuthorized {
		logger.Log.Debug("Spark code set, overriding status to authorized",
			zap.String("recordId", id.String()),
			zap.String("requestedStatus", string(status)),
		)
		status = models.StatusAuthorized
	}

	return s.repo.UpdateRecord(ctx, ownerID, id, videoID, sparkCode, status)
}

// DeleteAll removes every record for the owner and returns the count.
func (s *RecordService) DeleteAll(ctx context.Context, ownerID string) (int64, error) {
	deleted, err := s.repo.DeleteAllByOwner(ctx, ownerID)
	if err != nil {
		return 0, &ProcessingError{Message: "failed to delete records", Cause: err}
	}

	logger.Log.Info("Deleted all records",
		zap.String("ownerId", ownerID),
		zap.Int64("count", deleted),
	)

	return deleted, nil
}
