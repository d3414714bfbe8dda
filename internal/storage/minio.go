// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOConfig holds connection settings for an S3-compatible bucket.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// Region skips bucket location lookups when set.
	Region    string
	// PublicURL is the base URL objects are reachable at. When empty, files
	// are served by the application under URLPrefix.
	PublicURL string
}

// MinIO stores files as objects in a bucket.
type MinIO struct {
	mc        *minio.Client
	bucket    string
	publicURL string
}

// NewMinIO creates a client. It does not contact the server; call
// EnsureBucket for that.
func NewMinIO(cfg MinIOConfig) (*MinIO, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("minio endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, errors.New("minio access key and secret key are required")
	}

	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("creating minio client: %w", err)
	}

	bucket := cfg.Bucket
	if bucket == "" {
		bucket = "blockcms"
	}

	return &MinIO{mc: mc, bucket: bucket, publicURL: strings.TrimRight(cfg.PublicURL, "/")}, nil
}

// EnsureBucket creates the bucket when it does not exist.
func (m *MinIO) EnsureBucket(ctx context.Context) error {
	exists, err := m.mc.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("checking bucket: %w", err)
	}
	if !exists {
		if err := m.mc.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("creating bucket: %w", err)
		}
		slog.Info("created storage bucket", "bucket", m.bucket)
	}
	return nil
}

// Save implements FileStorage. The declared size is not trusted: the object
// holds everything r yields, so callers bound r themselves.
func (m *MinIO) Save(ctx context.Context, r io.Reader, originalName, mimeType string, _ int64) (Stored, error) {
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	name := NewFilename(originalName)

	info, err := m.mc.PutObject(ctx, m.bucket, name, r, -1, minio.PutObjectOptions{
		ContentType: mimeType,
	})
	if err != nil {
		return Stored{}, fmt.Errorf("uploading %s: %w", name, err)
	}

	return Stored{Filename: name, URL: m.objectURL(name), Size: info.Size}, nil
}

// Open implements FileStorage.
func (m *MinIO) Open(ctx context.Context, filename string) (io.ReadCloser, error) {
	if !ValidFilename(filename) {
		return nil, ErrNotFound
	}
	obj, err := m.mc.GetObject(ctx, m.bucket, filename, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", filename, err)
	}
	// GetObject is lazy; Stat surfaces a missing key.
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("stat %s: %w", filename, err)
	}
	return obj, nil
}

// Delete implements FileStorage. Removing a missing object succeeds.
func (m *MinIO) Delete(ctx context.Context, filename string) error {
	if err := m.mc.RemoveObject(ctx, m.bucket, filename, minio.RemoveObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil
		}
		return fmt.Errorf("removing %s: %w", filename, err)
	}
	return nil
}

func (m *MinIO) objectURL(name string) string {
	if m.publicURL == "" {
		return URLPrefix + name
	}
	return m.publicURL + "/" + name
}
