// Package models contains the data models and DTOs for the spark code tracker.
package models

import (
	"time"

	"github.com/google/uuid"
)

// RecordStatus represents the spark code authorization state of a video record.
type RecordStatus string

// RecordStatus constants define the possible authorization states.
const (
	StatusPending      RecordStatus = "pending"
	StatusAuthorized   RecordStatus = "authorized"
	StatusUnauthorized RecordStatus = "unauthorized"
)

// Valid reports whether s is one of the known statuses.
func (s RecordStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAuthorized, StatusUnauthorized:
		return true
	}
	return false
}

// VideoRecord is one row of the tracked dataset. Records are created only by
// the ingestion batch writer; DateAdded is set once and never changes.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type VideoRecord struct {
	ID              uuid.UUID    `json:"id"`
	OwnerID         string       `json:"owner_id"`
	VideoID         string       `json:"video_id"`
	Name            *string      `json:"name"`
	PostDate        time.Time    `json:"post_date"`
	CreatorUsername string       `json:"creator_username"`
	GMV             float64      `json:"gmv"`
	Status          RecordStatus `json:"status"`
	SparkCode       string       `json:"spark_code"`
	DateAdded       time.Time    `json:"date_added"`
	Tags            []string     `json:"tags"`
}

// NewVideoRecord creates a record in its initial state: fresh ID, empty
// videoId and spark code, status pending, empty tags.
func NewVideoRecord(ownerID string, name *string, postDate time.Time, creatorUsername string, gmv float64) *VideoRecord {
	return &VideoRecord{
		ID:              uuid.New(),
		OwnerID:         ownerID,
		VideoID:         "",
		Name:            name,
		PostDate:        postDate,
		CreatorUsername: creatorUsername,
		GMV:             gmv,
		Status:          StatusPending,
		SparkCode:       "",
		DateAdded:       time.Now(),
		Tags:            []string{},
	}
}

// UploadSummaryDTO is returned to the caller after an upload. Total counts
// data lines after blank filtering; Errors counts row-level parse failures.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type UploadSummaryDTO struct {
	NewEntries    int      `json:"newEntries"`
	Duplicates    int      `json:"duplicates"`
	Errors        int      `json:"errors"`
	Total         int      `json:"total"`
	ErrorMessages []string `json:"errorMessages"`
}

// IngestionCompletedEvent is published after a successful upload.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type IngestionCompletedEvent struct {
	EventID     uuid.UUID        `json:"eventId"`
	OwnerID     string           `json:"ownerId"`
	Summary     UploadSummaryDTO `json:"summary"`
	CompletedAt time.Time        `json:"completedAt"`
}

// ErrorResponse represents an error response.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type ErrorResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Path      string    `json:"path"`
}
