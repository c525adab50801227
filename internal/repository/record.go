// Package repository provides data access for video records.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spark-tracker/video-ingestion-go/internal/db"
	"github.com/spark-tracker/video-ingestion-go/internal/models"
)

// RecordRepository defines the store operations consumed by the ingestion
// pipeline and the record update paths. Every operation is scoped to an
// owner identity.
type RecordRepository interface {
	// ExistsByIdentity reports whether any record owned by ownerID matches
	// the (name, postDate, creatorUsername) identity triple. name compares
	// NULL-safe so two records both missing a name still collide.
	ExistsByIdentity(ctx context.Context, ownerID string, name *string, postDate time.Time, creatorUsername string) (bool, error)

	// BulkInsert writes a batch of new records in one transaction and
	// returns the number actually inserted. Rows colliding with the
	// identity uniqueness constraint are skipped, not errors.
	BulkInsert(ctx context.Context, records []*models.VideoRecord) (int, error)

	// ListByOwner retrieves all records for an owner, newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]*models.VideoRecord, error)

	// UpdateStatus sets only the status of one owned record.
	UpdateStatus(ctx context.Context, ownerID string, id uuid.UUID, status models.RecordStatus) (*models.VideoRecord, error)

	// UpdateSparkCode sets only the spark code. A non-empty code flips the
	// status to authorized; an empty code leaves the status alone.
	UpdateSparkCode(ctx context.Context, ownerID string, id uuid.UUID, sparkCode string) (*models.VideoRecord, error)

	// UpdateRecord applies the combined edit of videoId, sparkCode and status.
	UpdateRecord(ctx context.Context, ownerID string, id uuid.UUID, videoID, sparkCode string, status models.RecordStatus) (*models.VideoRecord, error)

	// DeleteAllByOwner removes every record for an owner and returns the count.
	DeleteAllByOwner(ctx context.Context, ownerID string) (int64, error)
}

type recordRepository struct {
	pool *pgxpool.Pool
}

// NewRecordRepository creates a new RecordRepository.
func NewRecordRepository(pool *pgxpool.Pool) RecordRepository {
	return &recordRepository{pool: pool}
}

const recordColumns = `id, owner_id, video_id, name, post_date, creator_username, gmv, status, spark_code, date_added, tags`

func (r *recordRepository) ExistsByIdentity(ctx context.Context, ownerID string, name *string, postDate time.Time, creatorUsername string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM video_records
			WHERE owner_id = $1
			  AND name IS NOT DISTINCT FROM $2
			  AND post_date = $3
			  AND creator_username = $4
		)
	`

	var exists bool
	err := r.pool.QueryRow(ctx, query, ownerID, name, postDate, creatorUsername).Scan(&exists)
	if err != nil {
		return false, db.WrapError(err, "check record identity")
	}

	return exists, nil
}

func (r *recordRepository) BulkInsert(ctx context.Context, records []*models.VideoRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO video_records (id, owner_id, video_id, name, post_date, creator_username, gmv, status, spark_code, date_added, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (owner_id, COALESCE(name, ''), post_date, creator_username) DO NOTHING
	`

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, db.WrapError(err, "begin bulk insert")
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(query,
			rec.ID,
			rec.OwnerID,
			rec.VideoID,
			rec.Name,
			rec.PostDate,
			rec.CreatorUsername,
			rec.GMV,
			rec.Status,
			rec.SparkCode,
			rec.DateAdded,
			rec.Tags,
		)
	}

	results := tx.SendBatch(ctx, batch)
	inserted := 0
	for range records {
		tag, err := results.Exec()
		if err != nil {
			results.Close()
			return 0, db.WrapError(err, "bulk insert records")
		}
		inserted += int(tag.RowsAffected())
	}

	if err := results.Close(); err != nil {
		return 0, db.WrapError(err, "close bulk insert batch")
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, db.WrapError(err, "commit bulk insert")
	}

	return inserted, nil
}

func (r *recordRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.VideoRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM video_records
		WHERE owner_id = $1
		ORDER BY date_added DESC
	`, recordColumns)

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, db.WrapError(err, "list records")
	}
	defer rows.Close()

	return scanRecords(rows)
}

func (r *recordRepository) UpdateStatus(ctx context.Context, ownerID string, id uuid.UUID, status models.RecordStatus) (*models.VideoRecord, error) {
	query := fmt.Sprintf(`
		UPDATE video_records
		SET status = $3
		WHERE owner_id = $1 AND id = $2
		RETURNING %s
	`, recordColumns)

	return r.queryOne(ctx, "update record status", query, ownerID, id, status)
}

func (r *recordRepository) UpdateSparkCode(ctx context.Context, ownerID string, id uuid.UUID, sparkCode string) (*models.VideoRecord, error) {
	query := fmt.Sprintf(`
		UPDATE video_records
		SET spark_code = $3,
		    status = CASE WHEN $3 <> '' THEN 'authorized' ELSE status END
		WHERE owner_id = $1 AND id = $2
		RETURNING %s
	`, recordColumns)

	return r.queryOne(ctx, "update record spark code", query, ownerID, id, sparkCode)
}

func (r *recordRepository) UpdateRecord(ctx context.Context, ownerID string, id uuid.UUID, videoID, sparkCode string, status models.RecordStatus) (*models.VideoRecord, error) {
	query := fmt.Sprintf(`
		UPDATE video_records
		SET video_id = $3, spark_code = $4, status = $5
		WHERE owner_id = $1 AND id = $2
		RETURNING %s
	`, recordColumns)

	return r.queryOne(ctx, "update record", query, ownerID, id, videoID, sparkCode, status)
}

func (r *recordRepository) DeleteAllByOwner(ctx context.Context, ownerID string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM video_records WHERE owner_id = $1`, ownerID)
	if err != nil {
		return 0, db.WrapError(err, "delete all records")
	}

	return tag.RowsAffected(), nil
}

func (r *recordRepository) queryOne(ctx context.Context, operation, query string, args ...any) (*models.VideoRecord, error) {
	rec := &models.VideoRecord{}
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&rec.ID,
		&rec.OwnerID,
		&rec.VideoID,
		&rec.Name,
		&rec.PostDate,
		&rec.CreatorUsername,
		&rec.GMV,
		&rec.Status,
		&rec.SparkCode,
		&rec.DateAdded,
		&rec.Tags,
	)
	if err != nil {
		return nil, db.WrapError(err, operation)
	}

	return rec, nil
}

// Helper function to scan multiple records from query results
func scanRecords(rows pgx.Rows) ([]*models.VideoRecord, error) {
	var records []*models.VideoRecord

	for rows.Next() {
		rec := &models.VideoRecord{}
		err := rows.Scan(
			&rec.ID,
			&rec.OwnerID,
			&rec.VideoID,
			&rec.Name,
			&rec.PostDate,
			&rec.CreatorUsername,
			&rec.GMV,
			&rec.Status,
			&rec.SparkCode,
			&rec.DateAdded,
			&rec.Tags,
		)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}

	return records, nil
}
