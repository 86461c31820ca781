package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/ceqc/internal/domain/models"
	"github.com/mamadbah2/ceqc/internal/service/exchange"
)

const maxImportBytes = 32 << 20

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExchangeService exports and imports backups.
type ExchangeService interface {
	Export(ctx context.Context) (models.ExportDocument, error)
	Workbook(ctx context.Context) ([]byte, error)
	Import(ctx context.Context, r io.Reader) (exchange.ImportResult, error)
}

// ExchangeHandler serves backup downloads and accepts imports.
type ExchangeHandler struct {
	svc    ExchangeService
	logger *zap.Logger
}

// NewExchangeHandler constructs the HTTP handler adapter.
func NewExchangeHandler(svc ExchangeService, logger *zap.Logger) *ExchangeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExchangeHandler{svc: svc, logger: logger}
}

// Export handles GET /api/export.
func (h *ExchangeHandler) Export(c *gin.Context) {
	doc, err := h.svc.Export(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Header("Content-Disposition", attachment("json", doc.ExportedAt))
	c.JSON(http.StatusOK, doc)
}

// Workbook handles GET /api/export.xlsx.
func (h *ExchangeHandler) Workbook(c *gin.Context) {
	data, err := h.svc.Workbook(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Header("Content-Disposition", attachment("xlsx", time.Now()))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// Import handles POST /api/import, either as a multipart "file" field or as
// a raw JSON body.
func (h *ExchangeHandler) Import(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes)

	var body io.Reader = c.Request.Body
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			badRequest(c, h.logger, "missing file field", err)
			return
		}
		f, err := fh.Open()
		if err != nil {
			badRequest(c, h.logger, "unreadable upload", err)
			return
		}
		defer f.Close()
		body = f
	}

	res, err := h.svc.Import(c.Request.Context(), body)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imported": res, "total": res.Total()})
}

func attachment(ext string, at time.Time) string {
	return fmt.Sprintf(`attachment; filename="ceqc-backup-%s.%s"`, at.Format("20060102-150405"), ext)
}
