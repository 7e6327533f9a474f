package http

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"learning-yogi/internal/bootstrap"
	"learning-yogi/internal/transport/http/handler"
	"learning-yogi/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	registry := prometheus.NewRegistry()
	if metrics, err := middleware.NewMetrics(registry); err != nil {
		log.Printf("register http metrics failed: %v", err)
	} else {
		router.Use(metrics.Handler())
	}
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	documentHandler := handler.NewDocumentHandler(app.Documents, app.Config.App.MaxUploadMB)
	timetableHandler := handler.NewTimetableHandler(app.Timetables)

	documents := router.Group("/documents")
	documents.POST("/upload", documentHandler.Upload)
	documents.GET("", documentHandler.List)
	documents.GET("/:id", documentHandler.Get)
	documents.DELETE("/:id", documentHandler.Delete)

	timetables := router.Group("/timetables")
	timetables.GET("", timetableHandler.List)
	timetables.GET("/:documentId", timetableHandler.GetByDocument)
	timetables.PUT("/:documentId", timetableHandler.Update)
	timetables.POST("/save-as", timetableHandler.SaveAs)

	return router
}
