package storage

import (
	"context"
	"fmt"
)

// Client is the top-level Supabase Storage client. It holds the
// endpoint and authenticated header set derived at construction and
// hands them to the bucket and object clients it creates.
//
// Use [New] for a hosted project or [NewWithEndpoint] for self-hosted
// deployments:
//
//	client := storage.New("abcdefgh", os.Getenv("SERVICE_KEY"))
//
//	bucket, err := client.CreateBucket(ctx, "avatars", storage.BucketOptions{Public: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	_, err = client.From("avatars").Upload(ctx, "user-1.png", f, nil)
//
// A Client is immutable after construction and safe for concurrent
// use.
type Client struct {
	transport *transport
	buckets   *BucketClient
}

// New creates a client for the hosted project identified by
// projectRef, talking to https://<projectRef>.supabase.co/storage/v1
// with apiKey as the bearer token.
func New(projectRef, apiKey string) *Client {
	return newClient(newTransport(projectURL(projectRef), authHeaders(apiKey)))
}

// NewWithEndpoint creates a client against an explicit storage
// endpoint, e.g. "http://localhost:8000/storage/v1" for a self-hosted
// deployment. apiKey is sent as the bearer token.
func NewWithEndpoint(endpoint, apiKey string) *Client {
	return newClient(newTransport(endpoint, authHeaders(apiKey)))
}

func newClient(t *transport) *Client {
	return &Client{transport: t, buckets: &BucketClient{transport: t}}
}

// WithHeaders returns a copy of the client that sends the given
// headers with every request, on top of the existing set. The original
// client is unchanged.
func (c *Client) WithHeaders(headers map[string]string) *Client {
	return newClient(c.transport.withHeaders(headers))
}

// From returns an [ObjectClient] scoped to the given bucket, sharing
// this client's endpoint and headers.
func (c *Client) From(bucket string) *ObjectClient {
	return &ObjectClient{transport: c.transport, bucket: bucket}
}

// Buckets returns the underlying [BucketClient] for callers that want
// to pass bucket operations around as a unit.
func (c *Client) Buckets() *BucketClient {
	return c.buckets
}

// CreateBucket creates a bucket named id.
func (c *Client) CreateBucket(ctx context.Context, id string, opts BucketOptions) (Bucket, error) {
	return c.buckets.Create(ctx, id, opts)
}

// GetBucket retrieves the bucket with the given id.
func (c *Client) GetBucket(ctx context.Context, id string) (Bucket, error) {
	return c.buckets.Get(ctx, id)
}

// ListBuckets returns all buckets the caller can see.
func (c *Client) ListBuckets(ctx context.Context) ([]Bucket, error) {
	return c.buckets.List(ctx)
}

// UpdateBucket changes the visibility of the bucket with the given id.
func (c *Client) UpdateBucket(ctx context.Context, id string, opts BucketOptions) (MessageResponse, error) {
	return c.buckets.Update(ctx, id, opts)
}

// DeleteBucket deletes the bucket with the given id. The bucket must
// be empty.
func (c *Client) DeleteBucket(ctx context.Context, id string) error {
	return c.buckets.Delete(ctx, id)
}

// EmptyBucket removes every object from the bucket with the given id.
func (c *Client) EmptyBucket(ctx context.Context, id string) error {
	return c.buckets.Empty(ctx, id)
}

// projectURL derives the canonical storage endpoint of a hosted
// project.
func projectURL(projectRef string) string {
	return fmt.Sprintf("https://%s.supabase.co/storage/v1", projectRef)
}

// authHeaders returns the bearer-token header set for apiKey.
func authHeaders(apiKey string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + apiKey}
}
