package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/ikkim/catalog-backend/config"
	"github.com/ikkim/catalog-backend/pkg/logger"
)

const imageFolder = "images"

// MaxImageSize bounds a single uploaded product image.
const MaxImageSize int64 = 10 << 20

var AllowedImageTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

type S3Storage struct {
	client  *s3.Client
	bucket  string
	region  string
	baseURL string
}

func NewS3Storage(cfg config.S3Config) *S3Storage {
	var awsCfg aws.Config
	var err error

	// Static credentials win; otherwise fall back to the default chain.
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsCfg = aws.Config{
			Region: cfg.Region,
			Credentials: credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				"",
			),
		}
	} else {
		awsCfg, err = awsconfig.LoadDefaultConfig(context.TODO(),
			awsconfig.WithRegion(cfg.Region),
		)
		if err != nil {
			logger.Warn("Failed to load default AWS config, using region only", map[string]interface{}{
				"error": err.Error(),
			})
			awsCfg = aws.Config{Region: cfg.Region}
		}
	}

	return &S3Storage{
		client:  s3.NewFromConfig(awsCfg),
		bucket:  cfg.Bucket,
		region:  cfg.Region,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// Upload stores body under a fresh key and returns its public URL.
func (s *S3Storage) Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	key := objectKey(filename)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		logger.Error("Failed to upload image to S3", err, map[string]interface{}{
			"bucket":   s.bucket,
			"filename": filename,
		})
		return "", fmt.Errorf("failed to upload %s: %w", filename, err)
	}

	url := s.fileURL(key)
	logger.Info("Image uploaded", map[string]interface{}{
		"key": key,
		"url": url,
	})
	return url, nil
}

func objectKey(filename string) string {
	base := strings.ReplaceAll(filepath.Base(filename), " ", "_")
	if base == "." || base == string(filepath.Separator) {
		base = "upload"
	}
	return fmt.Sprintf("%s/%s-%s", imageFolder, uuid.New().String(), base)
}

func (s *S3Storage) fileURL(key string) string {
	if s.baseURL != "" {
		return fmt.Sprintf("%s/%s", s.baseURL, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

// ValidateImage checks an uploaded product image against MaxImageSize
// and AllowedImageTypes.
func ValidateImage(size int64, contentType string) error {
	if err := ValidateFileSize(size, MaxImageSize); err != nil {
		return err
	}
	return ValidateContentType(contentType, AllowedImageTypes)
}

func ValidateFileSize(size int64, maxSize int64) error {
	if size > maxSize {
		return fmt.Errorf("file size exceeds maximum allowed size of %d bytes", maxSize)
	}
	return nil
}

func ValidateContentType(contentType string, allowedTypes []string) error {
	for _, allowed := range allowedTypes {
		if contentType == allowed {
			return nil
		}
	}
	return fmt.Errorf("content type %s is not allowed", contentType)
}
