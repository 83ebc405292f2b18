package importer

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"sourcing/internal/core/job"
	"sourcing/internal/utils/parser"
)

// JobReader serves job status lookups. Satisfied by *job.JobService.
type JobReader interface {
	GetJobStatus(ctx context.Context, jobID string) (*job.Job, error)
}

type Handler struct {
	service *Service
	jobs    JobReader
}

func NewHandler(service *Service, jobs JobReader) *Handler {
	return &Handler{service: service, jobs: jobs}
}

type apiError struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type createImportRequest struct {
	Query      string `json:"query"`
	MaxResults int    `json:"maxResults"`
}

type createURLImportRequest struct {
	URL string `json:"url"`
}

type createImportResponse struct {
	Success bool   `json:"success"`
	JobID   string `json:"jobId"`
	Status  string `json:"status"`
}

type previewParams struct {
	Query      string `form:"query"`
	MaxResults int    `form:"maxResults"`
}

func (h *Handler) HandleCreateImport(c *fiber.Ctx) error {
	var req createImportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(apiError{Error: "invalid body"})
	}
	if strings.TrimSpace(req.Query) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(apiError{Error: "query is required"})
	}

	jobID, err := h.service.EnqueueQuery(c.Context(), req.Query, req.MaxResults)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(apiError{Error: err.Error()})
	}
	return c.Status(fiber.StatusAccepted).JSON(createImportResponse{Success: true, JobID: jobID, Status: string(job.StatusPending)})
}

func (h *Handler) HandleCreateURLImport(c *fiber.Ctx) error {
	var req createURLImportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(apiError{Error: "invalid body"})
	}
	if strings.TrimSpace(req.URL) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(apiError{Error: "url is required"})
	}

	jobID, err := h.service.EnqueueURL(c.Context(), req.URL)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidSourceURL):
			return c.Status(fiber.StatusBadRequest).JSON(apiError{Error: err.Error()})
		case errors.Is(err, ErrDuplicateProduct):
			return c.Status(fiber.StatusConflict).JSON(apiError{Error: err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(apiError{Error: err.Error()})
		}
	}
	return c.Status(fiber.StatusAccepted).JSON(createImportResponse{Success: true, JobID: jobID, Status: string(job.StatusPending)})
}

func (h *Handler) HandleGetImport(c *fiber.Ctx) error {
	id := c.Params("jobId")
	j, err := h.jobs.GetJobStatus(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(apiError{Error: "not_found"})
	}
	return c.JSON(fiber.Map{"success": true, "job": j})
}

// HandleGetPreview scrapes synchronously and returns normalized
// products without persisting. Meant for small MaxResults values; the
// request holds a browser session open for its whole duration.
func (h *Handler) HandleGetPreview(c *fiber.Ctx) error {
	var p previewParams
	if err := parser.ParseQuery(c, &p); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(apiError{Error: "invalid query"})
	}
	if strings.TrimSpace(p.Query) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(apiError{Error: "query is required"})
	}

	products, scrapeErrors, err := h.service.Preview(c.Context(), p.Query, p.MaxResults)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(apiError{Error: err.Error()})
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"products": products,
		"errors":   scrapeErrors,
	})
}
