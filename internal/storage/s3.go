// Package storage provides S3 storage integration.
package storage

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Key prefixes in the bucket.
const (
	CaptchaPrefix = "captcha/"
	FontPrefix    = "fonts/"
)

// ErrUnsupportedFormat is returned for an image extension that is not served.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// S3ClientInterface defines the interface for S3 operations.
type S3ClientInterface interface {
	GetObject(key string) ([]byte, error)
	PutObject(key string, data []byte) error
	ListObjects(prefix string) ([]string, error)
}

// S3Client stores rendered captchas and serves fonts.
type S3Client struct {
	client        S3ClientInterface
	bucket        string
	cloudfrontURL string
}

// NewS3Client creates a new S3Client.
func NewS3Client(client S3ClientInterface, bucket string, cloudfrontURL string) *S3Client {
	return &S3Client{
		client:        client,
		bucket:        bucket,
		cloudfrontURL: strings.TrimSuffix(cloudfrontURL, "/"),
	}
}

// Bucket returns the bucket name.
func (c *S3Client) Bucket() string {
	return c.bucket
}

// UploadCaptcha uploads an encoded captcha under a fresh key and returns
// its CloudFront URL. ext is "png" or "gif".
func (c *S3Client) UploadCaptcha(data []byte, ext string) (string, error) {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	if ext != "png" && ext != "gif" {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	key := CaptchaPrefix + uuid.New().String() + "." + ext

	if err := c.client.PutObject(key, data); err != nil {
		return "", fmt.Errorf("failed to upload captcha image: %w", err)
	}

	return c.URL(key), nil
}

// URL returns the public URL of key.
func (c *S3Client) URL(key string) string {
	return fmt.Sprintf("%s/%s", c.cloudfrontURL, key)
}

// LoadFont fetches a TrueType font. A bare file name is looked up under
// FontPrefix.
func (c *S3Client) LoadFont(key string) ([]byte, error) {
	if !strings.Contains(key, "/") {
		key = FontPrefix + key
	}
	data, err := c.client.GetObject(key)
	if err != nil {
		return nil, fmt.Errorf("failed to get font: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("font %q is empty", key)
	}
	return data, nil
}

// ListFonts returns the font file names available in storage.
func (c *S3Client) ListFonts() ([]string, error) {
	keys, err := c.client.ListObjects(FontPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list fonts: %w", err)
	}

	names := make([]string, 0, len(keys))
	for _, key := range keys {
		if strings.ToLower(path.Ext(key)) == ".ttf" {
			names = append(names, strings.TrimPrefix(key, FontPrefix))
		}
	}
	sort.Strings(names)
	return names, nil
}
