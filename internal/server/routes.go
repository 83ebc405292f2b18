package server

import (
	"sourcing/internal/core/importer"
	"sourcing/internal/core/job"
	"sourcing/internal/health"
	"sourcing/internal/platform/redis"

	"github.com/gofiber/fiber/v2"
)

type Dependencies struct {
	Job      *job.JobService
	Importer *importer.Service
	Redis    *redis.Service
}

func RegisterRoutes(app *fiber.App, d Dependencies) *health.HealthHandler {
	// Health endpoints
	healthHandler := health.NewHealthHandler(d.Redis)
	app.Get("/v1/health", health.HealthLimiter(), healthHandler.HandleHealth)

	api := app.Group("/v1")

	importHandler := importer.NewHandler(d.Importer, d.Job)
	api.Post("/imports", importHandler.HandleCreateImport)
	api.Post("/imports/url", importHandler.HandleCreateURLImport)
	api.Get("/imports/:jobId", importHandler.HandleGetImport)
	api.Get("/preview", importHandler.HandleGetPreview)

	return healthHandler
}
