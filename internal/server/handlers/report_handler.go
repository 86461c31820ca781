package handlers

import (
	"bytes"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/ceqc/internal/domain/models"
	"github.com/mamadbah2/ceqc/internal/service/query"
	"github.com/mamadbah2/ceqc/internal/service/reporting"
)

// ReportService assembles reports.
type ReportService interface {
	Build(ctx context.Context, r query.Range) (*models.Report, error)
	BuildChart(ctx context.Context, r query.Range, name string) (models.ChartImage, error)
}

// ReportHandler serves assembled reports, their charts and the printable view.
type ReportHandler struct {
	svc    ReportService
	logger *zap.Logger
}

// NewReportHandler constructs the HTTP handler adapter.
func NewReportHandler(svc ReportService, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{svc: svc, logger: logger}
}

// Report handles GET /api/report?from&to or ?day.
func (h *ReportHandler) Report(c *gin.Context) {
	report, ok := h.build(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, report)
}

// Chart handles GET /api/report/charts/:name with the same range parameters.
func (h *ReportHandler) Chart(c *gin.Context) {
	r, ok := h.bindRange(c)
	if !ok {
		return
	}
	img, err := h.svc.BuildChart(c.Request.Context(), r, c.Param("name"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Data(http.StatusOK, "image/png", img.PNG)
}

// Print handles GET /api/report/print.
func (h *ReportHandler) Print(c *gin.Context) {
	report, ok := h.build(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := reporting.Printable(&buf, report); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (h *ReportHandler) bindRange(c *gin.Context) (query.Range, bool) {
	var r query.Range
	if err := c.ShouldBindQuery(&r); err != nil {
		badRequest(c, h.logger, "invalid range", err)
		return query.Range{}, false
	}
	if day := c.Query("day"); day != "" {
		r = query.Day(day)
	}
	return r, true
}

func (h *ReportHandler) build(c *gin.Context) (*models.Report, bool) {
	r, ok := h.bindRange(c)
	if !ok {
		return nil, false
	}
	report, err := h.svc.Build(c.Request.Context(), r)
	if err != nil {
		respondError(c, h.logger, err)
		return nil, false
	}
	return report, true
}
