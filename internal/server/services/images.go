package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/taxportal/internal/common"
	"github.com/dmitrijs2005/taxportal/internal/logging"
	"github.com/dmitrijs2005/taxportal/internal/server/config"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) error {
		_, err := c.PutObject(ctx, in)
		return err
	}
)

var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// ImageUpload is one file received from a client.
type ImageUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

type UploadedImage struct {
	URL      string `json:"url"`
	Key      string `json:"key"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

type UploadError struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

type MultiUploadResult struct {
	Uploaded []UploadedImage `json:"uploaded"`
	Errors   []UploadError   `json:"errors"`
}

// ImageService stores article images in an S3 bucket.
type ImageService struct {
	config *config.Config
	logger logging.Logger
	now    func() time.Time
}

func NewImageService(cfg *config.Config, logger logging.Logger) *ImageService {
	return &ImageService{
		config: cfg,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Enabled reports whether a bucket is configured.
func (s *ImageService) Enabled() bool {
	return s.config.S3Enabled()
}

func (s *ImageService) getClient(ctx context.Context) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(s.config.S3Region)}
	if s.config.S3AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3AccessKeyID,
			s.config.S3SecretAccessKey,
			"",
		)))
	}

	cfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if s.config.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// Upload validates and stores a single image and returns its public URL.
func (s *ImageService) Upload(ctx context.Context, f ImageUpload) (*UploadedImage, error) {
	if !s.Enabled() {
		return nil, fmt.Errorf("%w: image storage", common.ErrorNotConfigured)
	}

	client, err := s.getClient(ctx)
	if err != nil {
		return nil, storageFailure(ctx, s.logger, "s3 client", err)
	}
	return s.upload(ctx, client, f)
}

// UploadMany stores each file independently; a failing file is reported in
// Errors and does not stop the others.
func (s *ImageService) UploadMany(ctx context.Context, files []ImageUpload) (*MultiUploadResult, error) {
	if !s.Enabled() {
		return nil, fmt.Errorf("%w: image storage", common.ErrorNotConfigured)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files", common.ErrorValidation)
	}

	client, err := s.getClient(ctx)
	if err != nil {
		return nil, storageFailure(ctx, s.logger, "s3 client", err)
	}

	res := &MultiUploadResult{Uploaded: []UploadedImage{}, Errors: []UploadError{}}
	for _, f := range files {
		img, err := s.upload(ctx, client, f)
		if err != nil {
			res.Errors = append(res.Errors, UploadError{Filename: f.Filename, Error: err.Error()})
			continue
		}
		res.Uploaded = append(res.Uploaded, *img)
	}
	return res, nil
}

func (s *ImageService) upload(ctx context.Context, client *s3.Client, f ImageUpload) (*UploadedImage, error) {
	ext := strings.ToLower(filepath.Ext(f.Filename))
	if !allowedImageExtensions[ext] {
		return nil, fmt.Errorf("%w: file type %q is not allowed", common.ErrorValidation, ext)
	}

	// read one byte past the limit to detect oversized files
	data, err := io.ReadAll(io.LimitReader(f.Body, s.config.MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", common.ErrorValidation, f.Filename, err)
	}
	if int64(len(data)) > s.config.MaxUploadSize {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", common.ErrorValidation, s.config.MaxUploadSize)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: file is empty", common.ErrorValidation)
	}

	contentType := f.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = mime.TypeByExtension(ext)
	}

	key := s.objectKey(ext)
	err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.config.S3Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return nil, storageFailure(ctx, s.logger, "upload image", err, "key", key)
	}

	return &UploadedImage{
		URL:      s.publicURL(key),
		Key:      key,
		Filename: f.Filename,
		Size:     int64(len(data)),
	}, nil
}

// objectKey is <folder>/<YYYYMMDD>/<8 hex chars><ext>.
func (s *ImageService) objectKey(ext string) string {
	name := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return path.Join(s.config.S3Folder, s.now().Format("20060102"), name+ext)
}

func (s *ImageService) publicURL(key string) string {
	switch {
	case s.config.S3PublicURL != "":
		base := s.config.S3PublicURL
		if !strings.Contains(base, "://") {
			base = "https://" + base
		}
		return strings.TrimRight(base, "/") + "/" + key
	case s.config.S3BaseEndpoint != "":
		return strings.TrimRight(s.config.S3BaseEndpoint, "/") + "/" + s.config.S3Bucket + "/" + key
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.config.S3Bucket, s.config.S3Region, key)
	}
}
