package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/ceqc/internal/domain/models"
	"github.com/mamadbah2/ceqc/internal/service/query"
)

// RecordsService is the intake surface used by the HTTP API.
type RecordsService interface {
	SubmitSlump(ctx context.Context, in models.SlumpInput) (models.SlumpRecord, error)
	SubmitResistA(ctx context.Context, in models.ResistAInput) (models.ResistRecord, error)
	SubmitResistB(ctx context.Context, in models.ResistBInput) ([]models.ResistRecord, error)
	SubmitPernos(ctx context.Context, in models.PernosInput) (models.PernosRecord, error)
	Delete(ctx context.Context, coll models.Collection, id string) error
	Clear(ctx context.Context, coll models.Collection) error
	ClearAll(ctx context.Context) error
	ListSlump(ctx context.Context, r query.Range) ([]models.SlumpRecord, error)
	ListResist(ctx context.Context, r query.Range) ([]models.ResistRecord, error)
	ListPernos(ctx context.Context, r query.Range) ([]models.PernosRecord, error)
}

// RecordsHandler exposes record submission, listing and deletion.
type RecordsHandler struct {
	svc    RecordsService
	logger *zap.Logger
}

// NewRecordsHandler constructs the HTTP handler adapter.
func NewRecordsHandler(svc RecordsService, logger *zap.Logger) *RecordsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordsHandler{svc: svc, logger: logger}
}

// SubmitSlump handles POST /api/slump.
func (h *RecordsHandler) SubmitSlump(c *gin.Context) {
	var in models.SlumpInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, "invalid slump payload", err)
		return
	}
	rec, err := h.svc.SubmitSlump(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// SubmitResistA handles POST /api/resist/a.
func (h *RecordsHandler) SubmitResistA(c *gin.Context) {
	var in models.ResistAInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, "invalid method A payload", err)
		return
	}
	rec, err := h.svc.SubmitResistA(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// SubmitResistB handles POST /api/resist/b.
func (h *RecordsHandler) SubmitResistB(c *gin.Context) {
	var in models.ResistBInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, "invalid method B payload", err)
		return
	}
	recs, err := h.svc.SubmitResistB(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, recs)
}

// SubmitPernos handles POST /api/pernos.
func (h *RecordsHandler) SubmitPernos(c *gin.Context) {
	var in models.PernosInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, "invalid pernos payload", err)
		return
	}
	rec, err := h.svc.SubmitPernos(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// List handles GET /api/records/:collection?from&to.
func (h *RecordsHandler) List(c *gin.Context) {
	coll, ok := h.collection(c)
	if !ok {
		return
	}
	var r query.Range
	if err := c.ShouldBindQuery(&r); err != nil {
		badRequest(c, h.logger, "invalid range", err)
		return
	}

	ctx := c.Request.Context()
	var (
		out any
		err error
	)
	switch coll {
	case models.CollectionSlump:
		out, err = h.svc.ListSlump(ctx, r)
	case models.CollectionResist:
		out, err = h.svc.ListResist(ctx, r)
	default:
		out, err = h.svc.ListPernos(ctx, r)
	}
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// Delete handles DELETE /api/records/:collection/:id.
func (h *RecordsHandler) Delete(c *gin.Context) {
	coll, ok := h.collection(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), coll, c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Clear handles DELETE /api/records/:collection.
func (h *RecordsHandler) Clear(c *gin.Context) {
	coll, ok := h.collection(c)
	if !ok {
		return
	}
	if err := h.svc.Clear(c.Request.Context(), coll); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ClearAll handles DELETE /api/records.
func (h *RecordsHandler) ClearAll(c *gin.Context) {
	if err := h.svc.ClearAll(c.Request.Context()); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecordsHandler) collection(c *gin.Context) (models.Collection, bool) {
	coll, err := models.ParseCollection(c.Param("collection"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return "", false
	}
	return coll, true
}
