// SPDX-License-Identifier: AGPL-3.0-or-later

// Package publish uploads a generated output directory to an S3 (or
// S3-compatible) bucket.
package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/bartekus/qualitydash/internal/scanner"
)

// Config points at the destination bucket.
type Config struct {
	Bucket    string `yaml:"bucket" toml:"bucket"`
	Prefix    string `yaml:"prefix" toml:"prefix"`
	Region    string `yaml:"region" toml:"region"`
	Endpoint  string `yaml:"endpoint" toml:"endpoint"`
	AccessKey string `yaml:"access_key" toml:"access_key"`
	SecretKey string `yaml:"secret_key" toml:"secret_key"`
	// Exclude lists directory names below the output directory to skip.
	Exclude []string `yaml:"exclude" toml:"exclude"`
}

// Enabled reports whether a bucket is configured.
func (c Config) Enabled() bool { return c.Bucket != "" }

// PutObjectAPI is the subset of the S3 client used for uploads.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Publisher uploads files under a key prefix.
type Publisher struct {
	client  PutObjectAPI
	bucket  string
	prefix  string
	exclude []string
	logger  *slog.Logger
}

// NewPublisher wraps an existing client.
func NewPublisher(client PutObjectAPI, bucket, prefix string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		logger: logger,
	}
}

// New builds a Publisher with an aws-sdk-go-v2 client for cfg.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Publisher, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("bucket name is required")
	}

	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true // MinIO and most S3-compatible stores
		}
	})
	return NewPublisher(client, cfg.Bucket, cfg.Prefix, logger).WithExclude(cfg.Exclude...), nil
}

// WithExclude skips the named directories when publishing.
func (p *Publisher) WithExclude(dirs ...string) *Publisher {
	p.exclude = append(p.exclude, dirs...)
	return p
}

// Key returns the object key for a path relative to the published directory.
func (p *Publisher) Key(rel string) string {
	rel = filepath.ToSlash(rel)
	if p.prefix == "" {
		return rel
	}
	return path.Join(p.prefix, rel)
}

// PublishDir uploads every regular file below dir, in path order, and
// returns the number uploaded. Hidden files are never published.
func (p *Publisher) PublishDir(ctx context.Context, dir string) (int, error) {
	files, err := scanner.New(dir).FilesFiltered(scanner.FilterOptions{
		ExcludeDirs: p.exclude,
		SkipHidden:  true,
	})
	if err != nil {
		return 0, fmt.Errorf("publishing %s: %w", dir, err)
	}

	uploaded := 0
	for _, rel := range files {
		if err := p.upload(ctx, filepath.Join(dir, filepath.FromSlash(rel)), p.Key(rel)); err != nil {
			return uploaded, fmt.Errorf("publishing %s: %w", dir, err)
		}
		uploaded++
	}
	p.logger.Info("published output", "bucket", p.bucket, "prefix", p.prefix, "files", uploaded)
	return uploaded, nil
}

func (p *Publisher) upload(ctx context.Context, full, key string) error {
	f, err := os.Open(full)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(ContentType(full)),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s to s3: %w", key, err)
	}
	p.logger.Debug("uploaded object", "key", key)
	return nil
}

// ContentType guesses a MIME type from the file extension.
func ContentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".svg":
		return "image/svg+xml"
	case ".json":
		return "application/json"
	case ".html":
		return "text/html; charset=utf-8"
	case ".md":
		return "text/markdown; charset=utf-8"
	case ".prom":
		return "text/plain; version=0.0.4"
	}
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}
