// Package handler provides HTTP request handlers for the application.
package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spark-tracker/video-ingestion-go/internal/db"
	"github.com/spark-tracker/video-ingestion-go/internal/middleware"
	"github.com/spark-tracker/video-ingestion-go/internal/models"
	"github.com/spark-tracker/video-ingestion-go/internal/service"
	"github.com/spark-tracker/video-ingestion-go/pkg/logger"
)

// Ingester runs the CSV ingestion pipeline for one uploaded file.
type Ingester interface {
	Ingest(ctx context.Context, ownerID string, r io.Reader) (*models.UploadSummaryDTO, error)
}

// RecordUpdater covers the read and update paths outside ingestion.
type RecordUpdater interface {
	List(ctx context.Context, ownerID string) ([]*models.VideoRecord, error)
	SetStatus(ctx context.Context, ownerID string, id uuid.UUID, status models.RecordStatus) (*models.VideoRecord, error)
	SetSparkCode(ctx context.Context, ownerID string, id uuid.UUID, sparkCode string) (*models.VideoRecord, error)
	Update(ctx context.Context, ownerID string, id uuid.UUID, videoID, sparkCode string, status models.RecordStatus) (*models.VideoRecord, error)
	DeleteAll(ctx context.Context, ownerID string) (int64, error)
}

// errFileTooLarge is reported when the uploaded payload exceeds the
// configured size limit.
var errFileTooLarge = errors.New("uploaded file exceeds the size limit")

// RecordHandler handles record-related HTTP requests.
type RecordHandler struct {
	ingester    Ingester
	records     RecordUpdater
	maxFileSize int64
}

// NewRecordHandler creates a new RecordHandler instance.
func NewRecordHandler(ingester Ingester, records RecordUpdater, maxFileSize int64) *RecordHandler {
	return &RecordHandler{
		ingester:    ingester,
		records:     records,
		maxFileSize: maxFileSize,
	}
}

// Upload processes an uploaded CSV file and returns the upload summary.
// The file arrives either as a multipart form field named "file" or as the
// raw request body.
func (h *RecordHandler) Upload(c *gin.Context) {
	ownerID := middleware.OwnerID(c)

	payload, err := h.readPayload(c)
	if err != nil {
		if isTooLarge(err) {
			logger.Log.Warn("Upload rejected: payload too large",
				zap.String("ownerId", ownerID),
				zap.Int64("limit", h.maxFileSize),
			)
			h.sendError(c, http.StatusRequestEntityTooLarge, "Request Entity Too Large", errFileTooLarge.Error())
			return
		}
		h.sendError(c, http.StatusBadRequest, "Bad Request", "Failed to read upload: "+err.Error())
		return
	}

	summary, err := h.ingester.Ingest(c.Request.Context(), ownerID, bytes.NewReader(payload))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// List returns all records for the authenticated owner, newest first.
func (h *RecordHandler) List(c *gin.Context) {
	records, err := h.records.List(c.Request.Context(), middleware.OwnerID(c))
	if err != nil {
		h.handleError(c, err)
		return
	}

	if records == nil {
		records = []*models.VideoRecord{}
	}

	c.JSON(http.StatusOK, gin.H{
		"items": records,
		"total": len(records),
	})
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus handles the status-only update path.
func (h *RecordHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.recordID(c)
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.sendError(c, http.StatusBadRequest, "Bad Request", "Invalid request payload: "+err.Error())
		return
	}

	record, err := h.records.SetStatus(c.Request.Context(), middleware.OwnerID(c), id, models.RecordStatus(req.Status))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

type updateSparkCodeRequest struct {
	// Pointer so an explicit empty string (clearing the code) still binds.
	SparkCode *string `json:"sparkCode" binding:"required"`
}

// UpdateSparkCode handles the spark-code-only update path. Setting a
// non-empty code authorizes the record.
func (h *RecordHandler) UpdateSparkCode(c *gin.Context) {
	id, ok := h.recordID(c)
	if !ok {
		return
	}

	var req updateSparkCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.sendError(c, http.StatusBadRequest, "Bad Request", "Invalid request payload: "+err.Error())
		return
	}

	record, err := h.records.SetSparkCode(c.Request.Context(), middleware.OwnerID(c), id, *req.SparkCode)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

type updateRecordRequest struct {
	VideoID   string `json:"videoId"`
	SparkCode string `json:"sparkCode"`
	Status    string `json:"status" binding:"required"`
}

// Update handles the combined edit of videoId, sparkCode, and status.
func (h *RecordHandler) Update(c *gin.Context) {
	id, ok := h.recordID(c)
	if !ok {
		return
	}

	var req updateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.sendError(c, http.StatusBadRequest, "Bad Request", "Invalid request payload: "+err.Error())
		return
	}

	record, err := h.records.Update(c.Request.Context(), middleware.OwnerID(c), id,
		req.VideoID, req.SparkCode, models.RecordStatus(req.Status))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// DeleteAll removes every record for the authenticated owner.
func (h *RecordHandler) DeleteAll(c *gin.Context) {
	deleted, err := h.records.DeleteAll(c.Request.Context(), middleware.OwnerID(c))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"deleted": deleted,
	})
}

// readPayload reads the CSV payload, capped at the configured maximum file
// size. The payload is buffered so the size limit is enforced before the
// pipeline runs.
func (h *RecordHandler) readPayload(c *gin.Context) ([]byte, error) {
	contentType := c.GetHeader("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return nil, err
		}
		if h.maxFileSize > 0 && fileHeader.Size > h.maxFileSize {
			return nil, errFileTooLarge
		}
		file, err := fileHeader.Open()
		if err != nil {
			return nil, err
		}
		defer file.Close()
		return io.ReadAll(file)
	}

	body := c.Request.Body
	if h.maxFileSize > 0 {
		body = http.MaxBytesReader(c.Writer, body, h.maxFileSize)
	}
	return io.ReadAll(body)
}

func isTooLarge(err error) bool {
	var maxBytesErr *http.MaxBytesError
	return errors.Is(err, errFileTooLarge) || errors.As(err, &maxBytesErr)
}

func (h *RecordHandler) recordID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "Bad Request", "Record ID must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *RecordHandler) sendError(c *gin.Context, status int, errText, message string) {
	c.JSON(status, models.ErrorResponse{
		Status:    status,
		Error:     errText,
		Message:   message,
		Timestamp: time.Now(),
		Path:      c.Request.URL.Path,
	})
}

func (h *RecordHandler) handleError(c *gin.Context, err error) {
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		logger.Log.Warn("Validation error",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
		)
		h.sendError(c, http.StatusBadRequest, "Bad Request", err.Error())
	case db.IsNotFound(err):
		h.sendError(c, http.StatusNotFound, "Not Found", "Record not found")
	default:
		logger.Log.Error("Processing error",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
		)
		h.sendError(c, http.StatusInternalServerError, "Internal Server Error", "Failed to process request")
	}
}
