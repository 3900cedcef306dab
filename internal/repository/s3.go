package repository

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectClient is the subset of S3 operations used by S3Repository.
type ObjectClient interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(
		ctx context.Context,
		bucketName, objectName string,
		reader io.Reader,
		objectSize int64,
		opts minio.PutObjectOptions,
	) (minio.UploadInfo, error)
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	ReadObject(ctx context.Context, bucketName, objectName string) ([]byte, error)
}

// S3Repository stores collection documents as objects in an S3-compatible bucket.
type S3Repository struct {
	client ObjectClient // S3 client
	bucket string       // Bucket holding the documents
	prefix string       // Key prefix, e.g. "collections/"
	log    *slog.Logger // Logger for logging operations
}

// S3Config holds the connection settings for S3-compatible storage.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	Prefix    string
}

// minioClient adapts *minio.Client to ObjectClient.
type minioClient struct {
	*minio.Client
}

// ReadObject downloads the whole object. A missing key is reported as ErrNotFound.
func (c minioClient) ReadObject(ctx context.Context, bucketName, objectName string) ([]byte, error) {
	object, err := c.GetObject(ctx, bucketName, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object from S3: %w", err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, objectName)
		}
		return nil, fmt.Errorf("failed to read object from S3: %w", err)
	}

	return data, nil
}

// NewS3Client connects to an S3-compatible endpoint.
func NewS3Client(cfg S3Config) (ObjectClient, error) {
	if cfg.Endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("missing one or more required S3 settings: endpoint, access key, secret key")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	return minioClient{Client: client}, nil
}

// NewS3Repository creates a new S3Repository for the given bucket and key prefix.
// A non-empty prefix is normalized to end with a slash.
func NewS3Repository(client ObjectClient, bucket, prefix string, log *slog.Logger) *S3Repository {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	return &S3Repository{client: client, bucket: bucket, prefix: prefix, log: log}
}

// EnsureBucket creates the bucket if it does not exist yet.
func (r *S3Repository) EnsureBucket(ctx context.Context) error {
	exists, err := r.client.BucketExists(ctx, r.bucket)
	if err != nil {
		return fmt.Errorf("error checking bucket existence: %w", err)
	}
	if exists {
		return nil
	}

	if err = r.client.MakeBucket(ctx, r.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", r.bucket, err)
	}
	r.log.InfoContext(ctx, "Bucket created", "bucket", r.bucket)

	return nil
}

// Put uploads the document, overwriting any object with the same key,
// and returns its "s3://bucket/key" location.
func (r *S3Repository) Put(ctx context.Context, name string, data []byte) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}

	key := r.key(name)
	_, err := r.client.PutObject(
		ctx,
		r.bucket,
		key,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"},
	)
	if err != nil {
		return "", fmt.Errorf("failed to store object in S3: %w", err)
	}

	r.log.DebugContext(ctx, "Document stored in bucket", "bucket", r.bucket, "key", key)

	return fmt.Sprintf("s3://%s/%s", r.bucket, key), nil
}

// Get downloads the named document.
func (r *S3Repository) Get(ctx context.Context, name string) ([]byte, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	return r.client.ReadObject(ctx, r.bucket, r.key(name))
}

// List returns the names of the documents directly under the prefix, sorted.
func (r *S3Repository) List(ctx context.Context) ([]string, error) {
	names := []string{}
	for object := range r.client.ListObjects(ctx, r.bucket, minio.ListObjectsOptions{Prefix: r.prefix}) {
		if object.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", object.Err)
		}

		name := strings.TrimPrefix(object.Key, r.prefix)
		if ValidateName(name) != nil {
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)

	return names, nil
}

// Ping checks that the bucket is reachable.
func (r *S3Repository) Ping(ctx context.Context) error {
	exists, err := r.client.BucketExists(ctx, r.bucket)
	if err != nil {
		return fmt.Errorf("bucket check failed: %w", err)
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", r.bucket)
	}

	return nil
}

func (r *S3Repository) key(name string) string {
	return r.prefix + name
}
