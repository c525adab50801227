// Package middleware provides HTTP middleware for the API.
package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spark-tracker/video-ingestion-go/internal/models"
	"github.com/spark-tracker/video-ingestion-go/pkg/logger"
)

const (
	headerAPIKey = "X-API-Key"
	headerAuth   = "Authorization"
	bearerPrefix = "Bearer "

	// OwnerIDKey is the gin context key carrying the owner resolved from
	// the presented API key.
	OwnerIDKey = "ownerID"
)

// APIKeyAuth authenticates requests by API key and resolves the owner the
// request operates on behalf of.
type APIKeyAuth struct {
	// keys maps API key -> owner ID.
	keys map[string]string
}

// NewAPIKeyAuth creates a new API key authentication middleware. Empty keys
// are dropped; if no keys remain, all requests are rejected.
func NewAPIKeyAuth(keys map[string]string) *APIKeyAuth {
	valid := make(map[string]string, len(keys))
	for key, ownerID := range keys {
		if key != "" && ownerID != "" {
			valid[key] = ownerID
		}
	}

	return &APIKeyAuth{keys: valid}
}

// Middleware validates the API key and stores the resolved owner ID in the
// gin context. It checks the X-API-Key header first, then
// Authorization: Bearer.
func (a *APIKeyAuth) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := a.extractAPIKey(c)

		ownerID, ok := a.resolveOwner(apiKey)
		if !ok {
			logger.Log.Warn("Unauthorized request: invalid or missing API key",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
				zap.String("remoteAddr", c.ClientIP()),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Status:    http.StatusUnauthorized,
				Error:     "Unauthorized",
				Message:   "Invalid or missing API key",
				Timestamp: time.Now(),
				Path:      c.Request.URL.Path,
			})
			return
		}

		c.Set(OwnerIDKey, ownerID)
		c.Next()
	}
}

// OwnerID returns the owner ID stored by the middleware.
func OwnerID(c *gin.Context) string {
	return c.GetString(OwnerIDKey)
}

func (a *APIKeyAuth) extractAPIKey(c *gin.Context) string {
	if apiKey := c.GetHeader(headerAPIKey); apiKey != "" {
		return apiKey
	}

	authHeader := c.GetHeader(headerAuth)
	if strings.HasPrefix(authHeader, bearerPrefix) {
		return strings.TrimPrefix(authHeader, bearerPrefix)
	}

	return ""
}

// resolveOwner matches the provided key against the configured keys using
// constant-time comparison to prevent timing attacks.
func (a *APIKeyAuth) resolveOwner(providedKey string) (string, bool) {
	if providedKey == "" || len(a.keys) == 0 {
		return "", false
	}

	for validKey, ownerID := range a.keys {
		if subtle.ConstantTimeCompare([]byte(providedKey), []byte(validKey)) == 1 {
			return ownerID, true
		}
	}

	return "", false
}
