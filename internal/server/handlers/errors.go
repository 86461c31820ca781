package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/ceqc/internal/domain/models"
	"github.com/mamadbah2/ceqc/internal/repository/sqlite"
	"github.com/mamadbah2/ceqc/internal/service/reporting"
)

// respondError maps domain errors onto HTTP statuses: rejections are 422,
// unknown ids and charts 404, everything else 500.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var rej *models.RejectionError
	switch {
	case errors.As(err, &rej):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": rej.Message, "field": rej.Field})
	case errors.Is(err, models.ErrRejected):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, sqlite.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
	case errors.Is(err, reporting.ErrUnknownChart):
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown chart"})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		logger.Warn("request canceled", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "request canceled"})
	default:
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func badRequest(c *gin.Context, logger *zap.Logger, msg string, err error) {
	logger.Warn(msg, zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
