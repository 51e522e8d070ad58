// Package backup pushes embedded store snapshots to S3 and pulls them back.
package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/dd0wney/owlgraph/pkg/logging"
	"github.com/dd0wney/owlgraph/pkg/metrics"
	"github.com/dd0wney/owlgraph/pkg/storage"
)

var (
	// ErrNoSnapshot is returned when neither snapshot format exists locally or remotely.
	ErrNoSnapshot = errors.New("no snapshot found")
	// ErrNoBucket is returned when no bucket is configured.
	ErrNoBucket = errors.New("backup bucket is required")
)

// snapshotNames lists the snapshot formats, preferred first.
var snapshotNames = []string{storage.CompressedSnapshotFile, storage.SnapshotFile}

// Config selects the bucket and, optionally, static credentials and a non-AWS endpoint.
type Config struct {
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string
	UsePathStyle    bool
	AccessKeyID     string
	SecretAccessKey string
}

// ObjectAPI is the subset of the S3 client used here.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Client moves snapshot files between a data directory and a bucket prefix.
type Client struct {
	api     ObjectAPI
	bucket  string
	prefix  string
	logger  logging.Logger
	metrics *metrics.Registry
}

// New loads the default AWS configuration chain, overridden by cfg, and builds an S3 client.
func New(ctx context.Context, cfg Config, logger logging.Logger, reg *metrics.Registry) (*Client, error) {
	if cfg.Bucket == "" {
		return nil, ErrNoBucket
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	api := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
	return NewWithAPI(api, cfg.Bucket, cfg.Prefix, logger, reg), nil
}

// NewWithAPI builds a client over an existing object API.
func NewWithAPI(api ObjectAPI, bucket, prefix string, logger logging.Logger, reg *metrics.Registry) *Client {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Client{
		api:     api,
		bucket:  bucket,
		prefix:  prefix,
		logger:  logger.With(logging.Component("backup")),
		metrics: reg,
	}
}

// Key returns the object key for a snapshot file name.
func (c *Client) Key(name string) string {
	return path.Join(strings.TrimSuffix(c.prefix, "/"), name)
}

// Push uploads the snapshot found in dataDir and returns its object key.
func (c *Client) Push(ctx context.Context, dataDir string) (key string, err error) {
	start := time.Now()
	defer func() { c.record("push", err, start) }()

	for _, name := range snapshotNames {
		local := filepath.Join(dataDir, name)
		f, err := os.Open(local)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to open snapshot: %w", err)
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return "", fmt.Errorf("failed to stat snapshot: %w", err)
		}

		key = c.Key(name)
		_, err = c.api.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(c.bucket),
			Key:           aws.String(key),
			Body:          f,
			ContentLength: aws.Int64(info.Size()),
		})
		if err != nil {
			return "", fmt.Errorf("failed to upload s3://%s/%s: %w", c.bucket, key, err)
		}
		c.logger.Info("snapshot pushed",
			logging.Path(local),
			logging.String("bucket", c.bucket),
			logging.String("key", key),
			logging.Int64("bytes", info.Size()))
		return key, nil
	}
	return "", fmt.Errorf("%w in %s", ErrNoSnapshot, dataDir)
}

// Pull downloads the newest-format snapshot under the prefix into dataDir, replacing any
// local snapshot, and returns the written path.
func (c *Client) Pull(ctx context.Context, dataDir string) (written string, err error) {
	start := time.Now()
	defer func() { c.record("pull", err, start) }()

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}

	for _, name := range snapshotNames {
		key := c.Key(name)
		out, err := c.api.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(c.bucket),
			Key:    aws.String(key),
		})
		var missing *types.NoSuchKey
		if errors.As(err, &missing) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to download s3://%s/%s: %w", c.bucket, key, err)
		}

		written = filepath.Join(dataDir, name)
		if err := writeAtomic(written, out.Body); err != nil {
			return "", err
		}
		for _, other := range snapshotNames {
			if other == name {
				continue
			}
			if err := os.Remove(filepath.Join(dataDir, other)); err != nil && !os.IsNotExist(err) {
				return "", fmt.Errorf("failed to remove stale snapshot: %w", err)
			}
		}
		c.logger.Info("snapshot pulled",
			logging.Path(written),
			logging.String("bucket", c.bucket),
			logging.String("key", key))
		return written, nil
	}
	return "", fmt.Errorf("%w under s3://%s/%s", ErrNoSnapshot, c.bucket, c.prefix)
}

func writeAtomic(dst string, body io.ReadCloser) error {
	defer body.Close()

	tmp := dst + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", tmp, err)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		return fmt.Errorf("failed to rename snapshot: %w", err)
	}
	return nil
}

func (c *Client) record(op string, err error, start time.Time) {
	if c.metrics == nil {
		return
	}
	status, rows := "success", 1
	if err != nil {
		status, rows = "error", 0
	}
	c.metrics.RecordExport("s3", op, status, rows, time.Since(start))
}
