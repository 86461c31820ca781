package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/ceqc/internal/server/handlers"
)

// Handlers groups the HTTP adapters mounted by New.
type Handlers struct {
	Records  *handlers.RecordsHandler
	Report   *handlers.ReportHandler
	Exchange *handlers.ExchangeHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	api := r.Group("/api")
	api.POST("/slump", h.Records.SubmitSlump)
	api.POST("/resist/a", h.Records.SubmitResistA)
	api.POST("/resist/b", h.Records.SubmitResistB)
	api.POST("/pernos", h.Records.SubmitPernos)

	api.GET("/records/:collection", h.Records.List)
	api.DELETE("/records/:collection/:id", h.Records.Delete)
	api.DELETE("/records/:collection", h.Records.Clear)
	api.DELETE("/records", h.Records.ClearAll)

	api.GET("/report", h.Report.Report)
	api.GET("/report/charts/:name", h.Report.Chart)
	api.GET("/report/print", h.Report.Print)

	api.GET("/export", h.Exchange.Export)
	api.GET("/export.xlsx", h.Exchange.Workbook)
	api.POST("/import", h.Exchange.Import)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
