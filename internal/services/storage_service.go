package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
)

// StorageService is the object-storage surface: named buckets holding
// uploaded photos, addressed by public URL.
type StorageService interface {
	UploadFile(ctx context.Context, bucket, objectPath string, content []byte, mimeType string) (string, error)
	DeleteFile(ctx context.Context, bucket, fileURL string) error
	PublicURL(bucket, objectPath string) string
}

// SupabaseStorageService talks to the hosted storage API over HTTP.
type SupabaseStorageService struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
}

func NewSupabaseStorageService(baseURL, serviceKey string) *SupabaseStorageService {
	return &SupabaseStorageService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		httpClient: http.DefaultClient,
	}
}

// UploadFile stores the object with upsert and an hour of cache control and
// returns its public URL.
func (s *SupabaseStorageService) UploadFile(ctx context.Context, bucket, objectPath string, content []byte, mimeType string) (string, error) {
	objectPath = strings.Trim(objectPath, "/")
	uploadURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, bucket, objectPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}

	if mimeType == "" {
		mimeType = http.DetectContentType(content)
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("apikey", s.serviceKey)
	req.Header.Set("x-upsert", "true")
	req.Header.Set("Cache-Control", "max-age=3600")
	req.Header.Set("Content-Type", mimeType)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("upload file: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return s.PublicURL(bucket, objectPath), nil
}

func (s *SupabaseStorageService) DeleteFile(ctx context.Context, bucket, fileURL string) error {
	objectPath, err := s.objectPathFromURL(bucket, fileURL)
	if err != nil {
		return err
	}

	deleteURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, bucket, objectPath)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, deleteURL, nil)
	if err != nil {
		return fmt.Errorf("build delete request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("apikey", s.serviceKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("delete file: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

func (s *SupabaseStorageService) PublicURL(bucket, objectPath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, bucket, strings.Trim(objectPath, "/"))
}

func (s *SupabaseStorageService) objectPathFromURL(bucket, fileURL string) (string, error) {
	parsed, err := url.Parse(fileURL)
	if err != nil {
		return "", fmt.Errorf("parse file url: %w", err)
	}

	prefix := path.Join("/storage/v1/object/public", bucket) + "/"
	if !strings.HasPrefix(parsed.Path, prefix) {
		return "", fmt.Errorf("file url %q is not in bucket %q", fileURL, bucket)
	}
	return strings.TrimPrefix(parsed.Path, prefix), nil
}
