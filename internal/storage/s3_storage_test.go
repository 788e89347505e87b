package storage

import (
	"strings"
	"testing"

	"github.com/ikkim/catalog-backend/config"
	"github.com/stretchr/testify/assert"
)

func TestObjectKey(t *testing.T) {
	key := objectKey("summer shirt.png")
	assert.True(t, strings.HasPrefix(key, "images/"))
	assert.True(t, strings.HasSuffix(key, "-summer_shirt.png"))
	assert.NotEqual(t, key, objectKey("summer shirt.png"))
}

func TestFileURL(t *testing.T) {
	direct := NewS3Storage(config.S3Config{Region: "eu-west-1", Bucket: "catalog", AccessKeyID: "id", SecretAccessKey: "secret"})
	assert.Equal(t, "https://catalog.s3.eu-west-1.amazonaws.com/images/a.png", direct.fileURL("images/a.png"))

	cdn := NewS3Storage(config.S3Config{Region: "eu-west-1", Bucket: "catalog", AccessKeyID: "id", SecretAccessKey: "secret", BaseURL: "https://cdn.example.com/"})
	assert.Equal(t, "https://cdn.example.com/images/a.png", cdn.fileURL("images/a.png"))
}

func TestValidateImage(t *testing.T) {
	assert.NoError(t, ValidateImage(10, "image/png"))
	assert.Error(t, ValidateImage(10, "application/pdf"))
	assert.Error(t, ValidateImage(MaxImageSize+1, "image/jpeg"))
	assert.NoError(t, ValidateFileSize(MaxImageSize, MaxImageSize))
}
