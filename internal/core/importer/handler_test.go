package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sourcing/internal/core/alibaba"
	"sourcing/internal/core/job"
	"sourcing/internal/core/product"
)

type fakeJobReader struct {
	jobs map[string]*job.Job
}

func (f *fakeJobReader) GetJobStatus(ctx context.Context, jobID string) (*job.Job, error) {
	if j, ok := f.jobs[jobID]; ok {
		return j, nil
	}
	return nil, fmt.Errorf("job not found: %s", jobID)
}

func newTestApp(svc *Service, jobs JobReader) *fiber.App {
	app := fiber.New()
	h := NewHandler(svc, jobs)
	app.Post("/v1/imports", h.HandleCreateImport)
	app.Post("/v1/imports/url", h.HandleCreateURLImport)
	app.Get("/v1/imports/:jobId", h.HandleGetImport)
	app.Get("/v1/preview", h.HandleGetPreview)
	return app
}

func TestHandleCreateImport(t *testing.T) {
	svc := newTestService(&fakeStore{}, &fakeScraper{}, &fakeJobs{})
	app := newTestApp(svc, &fakeJobReader{})

	req := httptest.NewRequest("POST", "/v1/imports", strings.NewReader(`{"query":"widgets","maxResults":3}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)
	var body createImportResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.NotEmpty(t, body.JobID)
	assert.Equal(t, "pending", body.Status)
}

func TestHandleCreateImportRejectsEmptyQuery(t *testing.T) {
	svc := newTestService(&fakeStore{}, &fakeScraper{}, &fakeJobs{})
	app := newTestApp(svc, &fakeJobReader{})

	req := httptest.NewRequest("POST", "/v1/imports", strings.NewReader(`{"query":""}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandleCreateURLImportStatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		counts map[string]int64
		want   int
	}{
		{
			name: "accepted",
			url:  "https://www.alibaba.com/product-detail/a_1.html",
			want: fiber.StatusAccepted,
		},
		{
			name: "invalid url",
			url:  "https://example.com/a.html",
			want: fiber.StatusBadRequest,
		},
		{
			name:   "duplicate",
			url:    "https://www.alibaba.com/product-detail/a_1.html",
			counts: map[string]int64{"https://www.alibaba.com/product-detail/a_1.html": 1},
			want:   fiber.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(&fakeStore{counts: tt.counts}, &fakeScraper{}, &fakeJobs{})
			app := newTestApp(svc, &fakeJobReader{})

			body := fmt.Sprintf(`{"url":%q}`, tt.url)
			req := httptest.NewRequest("POST", "/v1/imports/url", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req)
			require.NoError(t, err)

			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestHandleGetImport(t *testing.T) {
	svc := newTestService(&fakeStore{}, &fakeScraper{}, &fakeJobs{})
	reader := &fakeJobReader{jobs: map[string]*job.Job{
		"abc": {JobID: "abc", Status: job.StatusCompleted, Inserted: 4},
	}}
	app := newTestApp(svc, reader)

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/imports/abc", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	raw, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(raw), `"completed"`)

	resp, err = app.Test(httptest.NewRequest("GET", "/v1/imports/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestHandleGetPreview(t *testing.T) {
	scraper := &fakeScraper{runResult: &alibaba.ScrapeJobResult{
		Products: []product.RawScrapedProduct{rawProduct("https://www.alibaba.com/product-detail/a_1.html")},
		Errors:   []alibaba.ScrapeError{},
	}}
	svc := newTestService(&fakeStore{}, scraper, &fakeJobs{})
	app := newTestApp(svc, &fakeJobReader{})

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/preview?query=widgets&maxResults=2", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Success  bool                        `json:"success"`
		Products []product.NormalizedProduct `json:"products"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Success)
	require.Len(t, body.Products, 1)
	assert.Equal(t, "Widget", body.Products[0].Name)
}

func TestHandleGetPreviewRequiresQuery(t *testing.T) {
	svc := newTestService(&fakeStore{}, &fakeScraper{}, &fakeJobs{})
	app := newTestApp(svc, &fakeJobReader{})

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/preview", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
