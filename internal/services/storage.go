package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/pkg"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// StorageProvider represents storage provider interface. Keys are opaque,
// slash-separated and owner-namespaced; providers never interpret them beyond
// mapping to their own addressing.
type StorageProvider interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (*UploadResult, error)
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Copy(ctx context.Context, srcKey, dstKey string) error
	GetURL(ctx context.Context, key string) (string, error)
	GetPresignedURL(ctx context.Context, key string, expiry int) (string, error)
}

// UploadResult represents upload result
type UploadResult struct {
	Key      string `json:"key"`
	URL      string `json:"url"`
	Size     int64  `json:"size"`
	ETag     string `json:"etag,omitempty"`
	Location string `json:"location,omitempty"`
}

// StorageService handles file storage operations
type StorageService struct {
	provider     StorageProvider
	providerType string
	allowedTypes []string
	maxFileSize  int64
}

// StorageConfig represents storage configuration
type StorageConfig struct {
	Provider     string   `json:"provider"`
	Bucket       string   `json:"bucket"`
	Region       string   `json:"region"`
	AccessKey    string   `json:"access_key"`
	SecretKey    string   `json:"secret_key"`
	Endpoint     string   `json:"endpoint,omitempty"`
	BasePath     string   `json:"base_path,omitempty"`
	BaseURL      string   `json:"base_url"`
	AllowedTypes []string `json:"allowed_types"`
	MaxFileSize  int64    `json:"max_file_size"`
}

// NewStorageService creates a new storage service
func NewStorageService(config *StorageConfig) (*StorageService, error) {
	var provider StorageProvider
	var err error

	switch strings.ToLower(config.Provider) {
	case "s3", "aws":
		provider, err = NewS3Provider(config)
	case "local":
		provider, err = NewLocalProvider(config)
	case "memory":
		provider = NewMemoryProvider()
	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", config.Provider)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage provider: %w", err)
	}

	return &StorageService{
		provider:     provider,
		providerType: config.Provider,
		allowedTypes: config.AllowedTypes,
		maxFileSize:  config.MaxFileSize,
	}, nil
}

// NewStorageServiceWithProvider wraps an already constructed provider
func NewStorageServiceWithProvider(provider StorageProvider, maxFileSize int64) *StorageService {
	return &StorageService{
		provider:    provider,
		maxFileSize: maxFileSize,
	}
}

// Upload validates and uploads a file body to storage
func (s *StorageService) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (*UploadResult, error) {
	if s.maxFileSize > 0 && size > s.maxFileSize {
		return nil, pkg.ErrFileTooLarge
	}

	if !s.isAllowedType(contentType) {
		return nil, pkg.ErrInvalidInput.WithDetails(map[string]interface{}{
			"contentType": contentType,
		})
	}

	result, err := s.provider.Upload(ctx, key, body, size, contentType)
	if err != nil {
		return nil, pkg.ErrFileUploadFailed.WithCause(err)
	}

	return result, nil
}

// Download downloads a file from storage
func (s *StorageService) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	reader, err := s.provider.Download(ctx, key)
	if err != nil {
		return nil, pkg.ErrFileNotFound.WithCause(err)
	}

	return reader, nil
}

// Delete deletes a file from storage
func (s *StorageService) Delete(ctx context.Context, key string) error {
	if err := s.provider.Delete(ctx, key); err != nil {
		return pkg.ErrStorageProviderError.WithCause(err)
	}

	return nil
}

// Copy duplicates stored bytes under a new key
func (s *StorageService) Copy(ctx context.Context, srcKey, dstKey string) error {
	if err := s.provider.Copy(ctx, srcKey, dstKey); err != nil {
		return pkg.ErrStorageProviderError.WithCause(err)
	}

	return nil
}

// GetURL gets public URL for a file
func (s *StorageService) GetURL(ctx context.Context, key string) (string, error) {
	url, err := s.provider.GetURL(ctx, key)
	if err != nil {
		return "", pkg.ErrStorageProviderError.WithCause(err)
	}

	return url, nil
}

// GetPresignedURL gets presigned URL for a file
func (s *StorageService) GetPresignedURL(ctx context.Context, key string, expiry int) (string, error) {
	url, err := s.provider.GetPresignedURL(ctx, key, expiry)
	if err != nil {
		return "", pkg.ErrStorageProviderError.WithCause(err)
	}

	return url, nil
}

// isAllowedType checks if file type is allowed
func (s *StorageService) isAllowedType(contentType string) bool {
	if len(s.allowedTypes) == 0 {
		return true
	}

	for _, allowedType := range s.allowedTypes {
		if strings.HasPrefix(contentType, allowedType) {
			return true
		}
	}

	return false
}

// S3Provider implements S3-compatible storage
type S3Provider struct {
	s3Client *s3.S3
	uploader *s3manager.Uploader
	bucket   string
	region   string
	baseURL  string
}

// NewS3Provider creates a new S3 provider
func NewS3Provider(config *StorageConfig) (*S3Provider, error) {
	sess, err := session.NewSession(&aws.Config{
		Region:   aws.String(config.Region),
		Endpoint: aws.String(config.Endpoint),
		Credentials: credentials.NewStaticCredentials(
			config.AccessKey,
			config.SecretKey,
			"",
		),
		S3ForcePathStyle: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &S3Provider{
		s3Client: s3.New(sess),
		uploader: s3manager.NewUploader(sess),
		bucket:   config.Bucket,
		region:   config.Region,
		baseURL:  config.BaseURL,
	}, nil
}

// Upload uploads file to S3
func (p *S3Provider) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (*UploadResult, error) {
	result, err := p.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	out := &UploadResult{
		Key:      key,
		URL:      result.Location,
		Size:     size,
		Location: result.Location,
	}
	if result.ETag != nil {
		out.ETag = strings.Trim(*result.ETag, "\"")
	}
	return out, nil
}

// Download downloads file from S3
func (p *S3Provider) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	result, err := p.s3Client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download from S3: %w", err)
	}

	return result.Body, nil
}

// Delete deletes file from S3
func (p *S3Provider) Delete(ctx context.Context, key string) error {
	_, err := p.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}

	return nil
}

// Copy performs a server-side object copy within the bucket
func (p *S3Provider) Copy(ctx context.Context, srcKey, dstKey string) error {
	_, err := p.s3Client.CopyObjectWithContext(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(p.bucket),
		CopySource: aws.String(p.bucket + "/" + srcKey),
		Key:        aws.String(dstKey),
	})
	if err != nil {
		return fmt.Errorf("failed to copy S3 object: %w", err)
	}

	return nil
}

// GetURL gets public URL for S3 object
func (p *S3Provider) GetURL(ctx context.Context, key string) (string, error) {
	if p.baseURL != "" {
		return fmt.Sprintf("%s/%s", strings.TrimRight(p.baseURL, "/"), key), nil
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", p.bucket, p.region, key), nil
}

// GetPresignedURL gets presigned URL for S3 object
func (p *S3Provider) GetPresignedURL(ctx context.Context, key string, expiry int) (string, error) {
	req, _ := p.s3Client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	})

	url, err := req.Presign(time.Duration(expiry) * time.Second)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return url, nil
}

// LocalProvider implements local filesystem storage under a base directory
type LocalProvider struct {
	basePath string
	baseURL  string
}

// NewLocalProvider creates a new local provider
func NewLocalProvider(config *StorageConfig) (*LocalProvider, error) {
	basePath := config.BasePath
	if basePath == "" {
		basePath = "./storage"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalProvider{
		basePath: basePath,
		baseURL:  config.BaseURL,
	}, nil
}

// keyPath maps a storage key to a filesystem path, rejecting traversal
func (p *LocalProvider) keyPath(key string) (string, error) {
	if key == "" || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid storage key: %q", key)
	}
	return filepath.Join(p.basePath, filepath.FromSlash(key)), nil
}

// Upload writes the file body under the base directory
func (p *LocalProvider) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (*UploadResult, error) {
	path, err := p.keyPath(key)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	written, err := io.Copy(f, body)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	url, _ := p.GetURL(ctx, key)
	return &UploadResult{Key: key, URL: url, Size: written}, nil
}

// Download opens a stored file for reading
func (p *LocalProvider) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	path, err := p.keyPath(key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, nil
}

// Delete removes a stored file
func (p *LocalProvider) Delete(ctx context.Context, key string) error {
	path, err := p.keyPath(key)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Copy duplicates a stored file under a new key
func (p *LocalProvider) Copy(ctx context.Context, srcKey, dstKey string) error {
	src, err := p.Download(ctx, srcKey)
	if err != nil {
		return err
	}
	defer src.Close()

	_, err = p.Upload(ctx, dstKey, src, 0, "")
	return err
}

// GetURL gets URL for local file
func (p *LocalProvider) GetURL(ctx context.Context, key string) (string, error) {
	return fmt.Sprintf("%s/%s", strings.TrimRight(p.baseURL, "/"), key), nil
}

// GetPresignedURL gets presigned URL (not applicable for local)
func (p *LocalProvider) GetPresignedURL(ctx context.Context, key string, expiry int) (string, error) {
	return p.GetURL(ctx, key)
}

// MemoryProvider keeps objects in a map. Used in development mode and tests.
type MemoryProvider struct {
	mu      sync.Mutex
	objects map[string][]byte
}

// NewMemoryProvider creates an empty in-memory provider
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{objects: make(map[string][]byte)}
}

// Upload stores the body bytes under key
func (p *MemoryProvider) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (*UploadResult, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	p.mu.Lock()
	p.objects[key] = data
	p.mu.Unlock()

	return &UploadResult{Key: key, Size: int64(len(data))}, nil
}

// Download returns a reader over the stored bytes
func (p *MemoryProvider) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	p.mu.Lock()
	data, ok := p.objects[key]
	p.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("object not found: %s", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Delete removes the stored bytes
func (p *MemoryProvider) Delete(ctx context.Context, key string) error {
	p.mu.Lock()
	delete(p.objects, key)
	p.mu.Unlock()
	return nil
}

// Copy duplicates stored bytes under a new key
func (p *MemoryProvider) Copy(ctx context.Context, srcKey, dstKey string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	data, ok := p.objects[srcKey]
	if !ok {
		return fmt.Errorf("object not found: %s", srcKey)
	}
	dup := make([]byte, len(data))
	copy(dup, data)
	p.objects[dstKey] = dup
	return nil
}

// GetURL returns a synthetic URL for the object
func (p *MemoryProvider) GetURL(ctx context.Context, key string) (string, error) {
	return "memory://" + key, nil
}

// GetPresignedURL returns the synthetic URL
func (p *MemoryProvider) GetPresignedURL(ctx context.Context, key string, expiry int) (string, error) {
	return p.GetURL(ctx, key)
}

// ObjectCount reports how many objects are stored, for test assertions
func (p *MemoryProvider) ObjectCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.objects)
}

// Has reports whether an object exists under key
func (p *MemoryProvider) Has(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.objects[key]
	return ok
}
