package importer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	supa "github.com/antoineross/supabase-go"
	storage_go "github.com/supabase-community/storage-go"

	"sourcing/internal/logger"
)

const maxImageBytes = 5 * 1024 * 1024

// ImageService re-hosts marketplace image URLs in Supabase storage.
// Marketplace CDN links rot and sometimes block hotlinking, so the
// dashboard prefers bucket copies when mirroring is enabled.
type ImageService struct {
	client      *supa.Client
	httpClient  *http.Client
	log         *logger.Logger
	supabaseURL string
	bucket      string
}

func NewImageService(client *supa.Client, supabaseURL, bucket string) *ImageService {
	return &ImageService{
		client:      client,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		log:         logger.New("ImageService"),
		supabaseURL: strings.TrimRight(supabaseURL, "/"),
		bucket:      bucket,
	}
}

// Mirror downloads each image and uploads it to the bucket, returning
// the public URL per image. A failed image keeps its original URL so a
// flaky CDN never sinks the import.
func (s *ImageService) Mirror(ctx context.Context, jobID string, urls []string) []string {
	out := make([]string, 0, len(urls))
	for i, imageURL := range urls {
		publicURL, err := s.mirrorOne(ctx, jobID, i, imageURL)
		if err != nil {
			s.log.Warn().Err(err).Str("url", imageURL).Msg("image mirror failed, keeping original")
			out = append(out, imageURL)
			continue
		}
		out = append(out, publicURL)
	}
	return out
}

func (s *ImageService) mirrorOne(ctx context.Context, jobID string, index int, imageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("empty image body")
	}
	if len(data) > maxImageBytes {
		return "", fmt.Errorf("image exceeds %d bytes", maxImageBytes)
	}

	mimeType := resp.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = mime.TypeByExtension(path.Ext(imageURL))
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	bucketPath := fmt.Sprintf("products/%s/%d%s", jobID, index, extensionFor(mimeType, imageURL))
	if _, err := s.client.Storage.UploadFile(s.bucket, bucketPath, bytes.NewReader(data), storage_go.FileOptions{ContentType: &mimeType}); err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}

	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.supabaseURL, s.bucket, bucketPath), nil
}

func extensionFor(mimeType, imageURL string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	}
	if ext := strings.ToLower(path.Ext(imageURL)); ext != "" && len(ext) <= 5 {
		return ext
	}
	return ".jpg"
}
