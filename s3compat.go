package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/aws/smithy-go/logging"
)

// S3Client talks to the S3-compatible surface of Supabase Storage,
// served at <endpoint>/storage/v1/s3. It authenticates with
// project-scoped S3 access keys rather than the API bearer token, and
// covers operations the REST surface does not, such as presigned
// uploads and HEAD-based existence checks.
type S3Client struct {
	client   *s3.Client
	psClient *s3.PresignClient
	region   string
}

// S3Config holds connection parameters for the S3-compatible endpoint.
// Exactly one of ProjectRef or Endpoint must be set.
type S3Config struct {
	// ProjectRef identifies a hosted project; the endpoint is derived
	// as https://<ProjectRef>.supabase.co/storage/v1/s3.
	ProjectRef string

	// Endpoint is an explicit S3 endpoint URL for self-hosted
	// deployments. Takes precedence over ProjectRef when both are set.
	Endpoint string

	// AccessKey is the S3 access key id issued for the project.
	AccessKey string

	// SecretKey is the matching S3 secret access key.
	SecretKey string

	// Region is the project's region identifier. Defaults to
	// "us-east-1" if empty.
	Region string
}

// S3Object describes an object as reported by the S3 surface.
type S3Object struct {
	// Key is the object path within the bucket.
	Key string

	// Size is the object size in bytes.
	Size int64

	// LastModified is the timestamp when the object was last modified.
	LastModified time.Time

	// ETag is the entity tag of the object content.
	ETag string

	// ContentType is the MIME type of the object content.
	ContentType string

	// Metadata contains user-defined key-value metadata pairs.
	Metadata map[string]string
}

// PutOption configures optional parameters on a PutObject request.
type PutOption func(*s3.PutObjectInput)

// ListOption configures optional parameters on a ListObjectsV2 request.
type ListOption func(*s3.ListObjectsV2Input)

// WithContentType sets the content type on a PutObject request.
func WithContentType(ct string) PutOption {
	return func(input *s3.PutObjectInput) {
		input.ContentType = aws.String(ct)
	}
}

// WithMetadata sets user-defined metadata on a PutObject request.
func WithMetadata(m map[string]string) PutOption {
	return func(input *s3.PutObjectInput) {
		input.Metadata = m
	}
}

// WithCacheControl sets the Cache-Control setting stored with the
// object.
func WithCacheControl(cc string) PutOption {
	return func(input *s3.PutObjectInput) {
		input.CacheControl = aws.String(cc)
	}
}

// WithPrefix filters list results to objects matching the given prefix.
func WithPrefix(prefix string) ListOption {
	return func(input *s3.ListObjectsV2Input) {
		input.Prefix = aws.String(prefix)
	}
}

// WithDelimiter sets the delimiter for grouping list results (e.g. "/"
// for directory-like listing).
func WithDelimiter(d string) ListOption {
	return func(input *s3.ListObjectsV2Input) {
		input.Delimiter = aws.String(d)
	}
}

// WithMaxKeys limits the number of keys returned per list request.
func WithMaxKeys(n int32) ListOption {
	return func(input *s3.ListObjectsV2Input) {
		input.MaxKeys = aws.Int32(n)
	}
}

// PutObjectOutput contains the result of a successful PutObject
// operation.
type PutObjectOutput struct {
	// ETag is the entity tag of the uploaded object.
	ETag string

	// VersionID is the version of the uploaded object, empty when the
	// bucket is unversioned.
	VersionID string
}

// NewS3Client creates a client for the S3-compatible surface. It uses
// static credentials and path-style addressing, which the storage
// service requires.
func NewS3Client(cfg S3Config) (*S3Client, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		if cfg.ProjectRef == "" {
			return nil, fmt.Errorf("storage: S3Config needs a ProjectRef or an Endpoint")
		}
		endpoint = projectURL(cfg.ProjectRef) + "/s3"
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	staticCreds := credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")

	s3Client := s3.New(s3.Options{
		Region:       region,
		Credentials:  staticCreds,
		BaseEndpoint: aws.String(endpoint),
		UsePathStyle: true,
		Logger:       logging.Nop{},
	})

	return &S3Client{
		client:   s3Client,
		psClient: s3.NewPresignClient(s3Client),
		region:   region,
	}, nil
}

// --- Bucket operations ---

// ListBuckets returns all buckets accessible with the configured keys.
func (c *S3Client) ListBuckets(ctx context.Context) ([]types.Bucket, error) {
	resp, err := c.client.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, fmt.Errorf("list buckets: %w", err)
	}
	return resp.Buckets, nil
}

// CreateBucket creates a new bucket with the given name.
func (c *S3Client) CreateBucket(ctx context.Context, name string) error {
	_, err := c.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(name),
	})
	if err != nil {
		return fmt.Errorf("create bucket %q: %w", name, err)
	}
	return nil
}

// DeleteBucket deletes the bucket with the given name. The bucket must
// be empty.
func (c *S3Client) DeleteBucket(ctx context.Context, name string) error {
	_, err := c.client.DeleteBucket(ctx, &s3.DeleteBucketInput{
		Bucket: aws.String(name),
	})
	if err != nil {
		return fmt.Errorf("delete bucket %q: %w", name, err)
	}
	return nil
}

// BucketExists checks whether a bucket with the given name exists.
func (c *S3Client) BucketExists(ctx context.Context, name string) (bool, error) {
	_, err := c.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(name),
	})
	if err != nil {
		if isS3NotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("head bucket %q: %w", name, err)
	}
	return true, nil
}

// --- Object operations ---

// PutObject uploads an object to the specified bucket and key.
func (c *S3Client) PutObject(ctx context.Context, bucket, key string, body io.Reader, opts ...PutOption) (*PutObjectOutput, error) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	for _, opt := range opts {
		opt(input)
	}

	resp, err := c.client.PutObject(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("put object %s/%s: %w", bucket, key, err)
	}

	out := &PutObjectOutput{
		ETag:      aws.ToString(resp.ETag),
		VersionID: aws.ToString(resp.VersionId),
	}
	return out, nil
}

// GetObject retrieves an object from the specified bucket and key. The
// caller is responsible for closing the returned io.ReadCloser.
func (c *S3Client) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, *S3Object, error) {
	resp, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("get object %s/%s: %w", bucket, key, err)
	}

	info := &S3Object{
		Key:         key,
		Size:        aws.ToInt64(resp.ContentLength),
		ETag:        aws.ToString(resp.ETag),
		ContentType: aws.ToString(resp.ContentType),
		Metadata:    resp.Metadata,
	}
	if resp.LastModified != nil {
		info.LastModified = *resp.LastModified
	}

	return resp.Body, info, nil
}

// HeadObject retrieves metadata about an object without downloading
// its content.
func (c *S3Client) HeadObject(ctx context.Context, bucket, key string) (*S3Object, error) {
	resp, err := c.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("head object %s/%s: %w", bucket, key, err)
	}

	info := &S3Object{
		Key:         key,
		Size:        aws.ToInt64(resp.ContentLength),
		ETag:        aws.ToString(resp.ETag),
		ContentType: aws.ToString(resp.ContentType),
		Metadata:    resp.Metadata,
	}
	if resp.LastModified != nil {
		info.LastModified = *resp.LastModified
	}
	return info, nil
}

// DeleteObject removes an object from the specified bucket.
func (c *S3Client) DeleteObject(ctx context.Context, bucket, key string) error {
	_, err := c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object %s/%s: %w", bucket, key, err)
	}
	return nil
}

// ListObjects lists objects in the specified bucket with optional
// filtering. All pages are collected and returned as a single slice.
func (c *S3Client) ListObjects(ctx context.Context, bucket string, opts ...ListOption) ([]S3Object, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
	}
	for _, opt := range opts {
		opt(input)
	}

	var objects []S3Object
	paginator := s3.NewListObjectsV2Paginator(c.client, input)

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list objects in %s: %w", bucket, err)
		}

		for _, obj := range page.Contents {
			info := S3Object{
				Key:  aws.ToString(obj.Key),
				Size: aws.ToInt64(obj.Size),
				ETag: aws.ToString(obj.ETag),
			}
			if obj.LastModified != nil {
				info.LastModified = *obj.LastModified
			}
			objects = append(objects, info)
		}
	}

	return objects, nil
}

// ObjectExists checks whether an object exists at the specified bucket
// and key.
func (c *S3Client) ObjectExists(ctx context.Context, bucket, key string) (bool, error) {
	_, err := c.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isS3NotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("head object %s/%s: %w", bucket, key, err)
	}
	return true, nil
}

// CopyObject copies an object from one location to another within the
// same or across buckets.
func (c *S3Client) CopyObject(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string) error {
	copySource := fmt.Sprintf("%s/%s", srcBucket, srcKey)
	_, err := c.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(dstBucket),
		Key:        aws.String(dstKey),
		CopySource: aws.String(copySource),
	})
	if err != nil {
		return fmt.Errorf("copy object %s/%s -> %s/%s: %w", srcBucket, srcKey, dstBucket, dstKey, err)
	}
	return nil
}

// --- Presigned URLs ---

// PresignGetObject generates a presigned URL for downloading an
// object. The URL expires after the given duration.
func (c *S3Client) PresignGetObject(ctx context.Context, bucket, key string, expiry time.Duration) (string, error) {
	req, err := c.psClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("presign get %s/%s: %w", bucket, key, err)
	}
	return req.URL, nil
}

// PresignPutObject generates a presigned URL for uploading an object.
// The URL expires after the given duration.
func (c *S3Client) PresignPutObject(ctx context.Context, bucket, key string, expiry time.Duration) (string, error) {
	req, err := c.psClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("presign put %s/%s: %w", bucket, key, err)
	}
	return req.URL, nil
}

// isS3NotFound reports whether err is a missing-bucket or
// missing-object error. Typed SDK errors are checked first, then API
// error codes, since S3-compatible services do not always map onto the
// exact SDK types.
func isS3NotFound(err error) bool {
	if err == nil {
		return false
	}

	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return true
	}
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NoSuchBucket" || code == "NoSuchKey" || code == "NotFound"
	}

	return false
}
