package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/mamadbah2/ceqc/internal/server/handlers"
)

func TestNewMountsRoutes(t *testing.T) {
	engine := New(Handlers{
		Records:  handlers.NewRecordsHandler(nil, nil),
		Report:   handlers.NewReportHandler(nil, nil),
		Exchange: handlers.NewExchangeHandler(nil, nil),
	}, zap.NewNop())

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	// unknown collections are rejected before any service call
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/records/eggs", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	routes := map[string]bool{}
	for _, r := range engine.Routes() {
		routes[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"POST /api/slump",
		"POST /api/resist/a",
		"POST /api/resist/b",
		"POST /api/pernos",
		"GET /api/records/:collection",
		"DELETE /api/records/:collection/:id",
		"DELETE /api/records",
		"GET /api/report",
		"GET /api/report/charts/:name",
		"GET /api/report/print",
		"GET /api/export",
		"GET /api/export.xlsx",
		"POST /api/import",
	} {
		assert.True(t, routes[want], want)
	}
}
