//go:build integration
// +build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spark-tracker/video-ingestion-go/internal/db"
	"github.com/spark-tracker/video-ingestion-go/internal/db/testutil"
	"github.com/spark-tracker/video-ingestion-go/internal/models"
)

func strPtr(s string) *string { return &s }

func testRecord(ownerID, name, creator string, postDate time.Time) *models.VideoRecord {
	var n *string
	if name != "" {
		n = strPtr(name)
	}
	return models.NewVideoRecord(ownerID, n, postDate, creator, 100.0)
}

func TestRecordRepository_BulkInsert(t *testing.T) {
	td := testutil.SetupTestDatabase(t)
	defer td.Cleanup(t)

	repo := NewRecordRepository(td.Pool)
	ctx := context.Background()
	postDate := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	t.Run("inserts new records with defaults", func(t *testing.T) {
		td.TruncateTables(t)

		records := []*models.VideoRecord{
			testRecord("user-1", "Clip A", "alice", postDate),
			testRecord("user-1", "Clip B", "bob", postDate),
		}

		inserted, err := repo.BulkInsert(ctx, records)
		require.NoError(t, err)
		assert.Equal(t, 2, inserted)

		stored, err := repo.ListByOwner(ctx, "user-1")
		require.NoError(t, err)
		require.Len(t, stored, 2)
		for _, rec := range stored {
			assert.Equal(t, models.StatusPending, rec.Status)
			assert.Empty(t, rec.SparkCode)
			assert.Empty(t, rec.VideoID)
			assert.Empty(t, rec.Tags)
			assert.False(t, rec.DateAdded.IsZero())
		}
	})

	t.Run("identity collisions are skipped, not errors", func(t *testing.T) {
		td.TruncateTables(t)

		first := []*models.VideoRecord{testRecord("user-1", "Clip A", "alice", postDate)}
		inserted, err := repo.BulkInsert(ctx, first)
		require.NoError(t, err)
		require.Equal(t, 1, inserted)

		// Same identity triple, fresh ID: the unique index wins the race.
		second := []*models.VideoRecord{
			testRecord("user-1", "Clip A", "alice", postDate),
			testRecord("user-1", "Clip C", "carol", postDate),
		}
		inserted, err = repo.BulkInsert(ctx, second)
		require.NoError(t, err)
		assert.Equal(t, 1, inserted)
	})

	t.Run("records without a name collide too", func(t *testing.T) {
		td.TruncateTables(t)

		inserted, err := repo.BulkInsert(ctx, []*models.VideoRecord{
			testRecord("user-1", "", "alice", postDate),
		})
		require.NoError(t, err)
		require.Equal(t, 1, inserted)

		inserted, err = repo.BulkInsert(ctx, []*models.VideoRecord{
			testRecord("user-1", "", "alice", postDate),
		})
		require.NoError(t, err)
		assert.Equal(t, 0, inserted)
	})

	t.Run("same identity for a different owner inserts", func(t *testing.T) {
		td.TruncateTables(t)

		_, err := repo.BulkInsert(ctx, []*models.VideoRecord{
			testRecord("user-1", "Clip A", "alice", postDate),
		})
		require.NoError(t, err)

		inserted, err := repo.BulkInsert(ctx, []*models.VideoRecord{
			testRecord("user-2", "Clip A", "alice", postDate),
		})
		require.NoError(t, err)
		assert.Equal(t, 1, inserted)
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		inserted, err := repo.BulkInsert(ctx, nil)
		require.NoError(t, err)
		assert.Zero(t, inserted)
	})
}

func TestRecordRepository_ExistsByIdentity(t *testing.T) {
	td := testutil.SetupTestDatabase(t)
	defer td.Cleanup(t)

	repo := NewRecordRepository(td.Pool)
	ctx := context.Background()
	postDate := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	td.TruncateTables(t)
	_, err := repo.BulkInsert(ctx, []*models.VideoRecord{
		testRecord("user-1", "Clip A", "alice", postDate),
		testRecord("user-1", "", "bob", postDate),
	})
	require.NoError(t, err)

	t.Run("matches the full triple", func(t *testing.T) {
		exists, err := repo.ExistsByIdentity(ctx, "user-1", strPtr("Clip A"), postDate, "alice")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("nil name matches nil name", func(t *testing.T) {
		exists, err := repo.ExistsByIdentity(ctx, "user-1", nil, postDate, "bob")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("different owner does not match", func(t *testing.T) {
		exists, err := repo.ExistsByIdentity(ctx, "user-2", strPtr("Clip A"), postDate, "alice")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("different date does not match", func(t *testing.T) {
		exists, err := repo.ExistsByIdentity(ctx, "user-1", strPtr("Clip A"), postDate.AddDate(0, 0, 1), "alice")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestRecordRepository_ListByOwner(t *testing.T) {
	td := testutil.SetupTestDatabase(t)
	defer td.Cleanup(t)

	repo := NewRecordRepository(td.Pool)
	ctx := context.Background()

	t.Run("orders by date added descending", func(t *testing.T) {
		td.TruncateTables(t)

		older := testRecord("user-1", "Old Clip", "alice", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
		older.DateAdded = time.Now().Add(-time.Hour)
		newer := testRecord("user-1", "New Clip", "bob", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
		newer.DateAdded = time.Now()

		_, err := repo.BulkInsert(ctx, []*models.VideoRecord{older, newer})
		require.NoError(t, err)

		records, err := repo.ListByOwner(ctx, "user-1")
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "New Clip", *records[0].Name)
		assert.Equal(t, "Old Clip", *records[1].Name)
	})

	t.Run("scopes to the owner", func(t *testing.T) {
		td.TruncateTables(t)

		_, err := repo.BulkInsert(ctx, []*models.VideoRecord{
			testRecord("user-1", "Mine", "alice", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
			testRecord("user-2", "Theirs", "bob", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		})
		require.NoError(t, err)

		records, err := repo.ListByOwner(ctx, "user-1")
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "Mine", *records[0].Name)
	})

	t.Run("empty result for unknown owner", func(t *testing.T) {
		records, err := repo.ListByOwner(ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

func TestRecordRepository_Updates(t *testing.T) {
	td := testutil.SetupTestDatabase(t)
	defer td.Cleanup(t)

	repo := NewRecordRepository(td.Pool)
	ctx := context.Background()
	postDate := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	insertOne := func(t *testing.T) *models.VideoRecord {
		td.TruncateTables(t)
		rec := testRecord("user-1", "Clip A", "alice", postDate)
		_, err := repo.BulkInsert(ctx, []*models.VideoRecord{rec})
		require.NoError(t, err)
		return rec
	}

	t.Run("UpdateStatus changes only the status", func(t *testing.T) {
		rec := insertOne(t)

		updated, err := repo.UpdateStatus(ctx, "user-1", rec.ID, models.StatusUnauthorized)
		require.NoError(t, err)
		assert.Equal(t, models.StatusUnauthorized, updated.Status)
		assert.Empty(t, updated.SparkCode)
		assert.Equal(t, rec.DateAdded.Unix(), updated.DateAdded.Unix())
	})

	t.Run("UpdateSparkCode with a code authorizes the record", func(t *testing.T) {
		rec := insertOne(t)

		updated, err := repo.UpdateSparkCode(ctx, "user-1", rec.ID, "SPK-123")
		require.NoError(t, err)
		assert.Equal(t, "SPK-123", updated.SparkCode)
		assert.Equal(t, models.StatusAuthorized, updated.Status)
	})

	t.Run("UpdateSparkCode with an empty code keeps the status", func(t *testing.T) {
		rec := insertOne(t)

		_, err := repo.UpdateStatus(ctx, "user-1", rec.ID, models.StatusUnauthorized)
		require.NoError(t, err)

		updated, err := repo.UpdateSparkCode(ctx, "user-1", rec.ID, "")
		require.NoError(t, err)
		assert.Empty(t, updated.SparkCode)
		assert.Equal(t, models.StatusUnauthorized, updated.Status)
	})

	t.Run("UpdateRecord applies the combined edit", func(t *testing.T) {
		rec := insertOne(t)

		updated, err := repo.UpdateRecord(ctx, "user-1", rec.ID, "ext-42", "SPK-9", models.StatusAuthorized)
		require.NoError(t, err)
		assert.Equal(t, "ext-42", updated.VideoID)
		assert.Equal(t, "SPK-9", updated.SparkCode)
		assert.Equal(t, models.StatusAuthorized, updated.Status)
	})

	t.Run("updates are owner scoped", func(t *testing.T) {
		rec := insertOne(t)

		_, err := repo.UpdateStatus(ctx, "user-2", rec.ID, models.StatusAuthorized)
		require.Error(t, err)
		assert.True(t, db.IsNotFound(err))
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		insertOne(t)

		_, err := repo.UpdateStatus(ctx, "user-1", uuid.New(), models.StatusAuthorized)
		require.Error(t, err)
		assert.True(t, db.IsNotFound(err))
	})
}

func TestRecordRepository_DeleteAllByOwner(t *testing.T) {
	td := testutil.SetupTestDatabase(t)
	defer td.Cleanup(t)

	repo := NewRecordRepository(td.Pool)
	ctx := context.Background()
	postDate := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	td.TruncateTables(t)
	_, err := repo.BulkInsert(ctx, []*models.VideoRecord{
		testRecord("user-1", "Clip A", "alice", postDate),
		testRecord("user-1", "Clip B", "bob", postDate),
		testRecord("user-2", "Clip C", "carol", postDate),
	})
	require.NoError(t, err)

	deleted, err := repo.DeleteAllByOwner(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	remaining, err := repo.ListByOwner(ctx, "user-2")
	require.NoError(t, err)
	assert.Len(t, remaining, 1)

	deleted, err = repo.DeleteAllByOwner(ctx, "user-1")
	require.NoError(t, err)
	assert.Zero(t, deleted)
}
