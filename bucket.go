package storage

import (
	"context"
	"fmt"
	"net/http"
)

// Bucket describes a bucket resource as reported by the service.
// Fields the service omits for a given operation are left zero.
type Bucket struct {
	Id        string `json:"id"`
	Name      string `json:"name"`
	Owner     string `json:"owner,omitempty"`
	Public    bool   `json:"public"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// BucketOptions configures bucket visibility on create and update.
type BucketOptions struct {
	// Public makes every object in the bucket readable without
	// authentication via its public URL.
	Public bool
}

// MessageResponse is the acknowledgement body the service returns for
// operations that do not yield a resource.
type MessageResponse struct {
	Message string `json:"message"`
}

// bucketRequest is the request payload for bucket create and update.
// Public is encoded as a JSON boolean on both calls.
type bucketRequest struct {
	Id     string `json:"id"`
	Name   string `json:"name"`
	Public bool   `json:"public"`
}

// BucketClient performs bucket-level operations against the /bucket
// endpoint family. Construct one with [NewBucketClient],
// [NewBucketClientWithEndpoint], or through [Client].
//
// A BucketClient is immutable after construction and safe for
// concurrent use.
type BucketClient struct {
	transport *transport
}

// NewBucketClient creates a bucket client for the canonical Supabase
// endpoint derived from projectRef, authenticated with apiKey.
func NewBucketClient(projectRef, apiKey string) *BucketClient {
	return &BucketClient{transport: newTransport(projectURL(projectRef), authHeaders(apiKey))}
}

// NewBucketClientWithEndpoint creates a bucket client against an
// explicit storage endpoint (self-hosted or custom deployments).
// headers are merged into every request on top of the defaults.
func NewBucketClientWithEndpoint(endpoint string, headers map[string]string) *BucketClient {
	return &BucketClient{transport: newTransport(endpoint, headers)}
}

// Create creates a bucket named id. The bucket name is always set
// equal to its id. The service acknowledges with the bucket name only.
func (c *BucketClient) Create(ctx context.Context, id string, opts BucketOptions) (Bucket, error) {
	req, err := c.transport.newJSONRequest(ctx, http.MethodPost, "/bucket",
		bucketRequest{Id: id, Name: id, Public: opts.Public})
	if err != nil {
		return Bucket{}, err
	}

	var b Bucket
	if err := c.transport.do(req, &b); err != nil {
		return Bucket{}, fmt.Errorf("create bucket %q: %w", id, err)
	}
	return b, nil
}

// Get retrieves the bucket with the given id.
func (c *BucketClient) Get(ctx context.Context, id string) (Bucket, error) {
	req, err := c.transport.newRequest(ctx, http.MethodGet, "/bucket/"+id, nil, nil)
	if err != nil {
		return Bucket{}, err
	}

	var b Bucket
	if err := c.transport.do(req, &b); err != nil {
		return Bucket{}, fmt.Errorf("get bucket %q: %w", id, err)
	}
	return b, nil
}

// List returns all buckets the caller can see.
func (c *BucketClient) List(ctx context.Context) ([]Bucket, error) {
	req, err := c.transport.newRequest(ctx, http.MethodGet, "/bucket", nil, nil)
	if err != nil {
		return nil, err
	}

	var buckets []Bucket
	if err := c.transport.do(req, &buckets); err != nil {
		return nil, fmt.Errorf("list buckets: %w", err)
	}
	return buckets, nil
}

// Update changes the visibility of the bucket with the given id.
func (c *BucketClient) Update(ctx context.Context, id string, opts BucketOptions) (MessageResponse, error) {
	req, err := c.transport.newJSONRequest(ctx, http.MethodPut, "/bucket/"+id,
		bucketRequest{Id: id, Name: id, Public: opts.Public})
	if err != nil {
		return MessageResponse{}, err
	}

	var msg MessageResponse
	if err := c.transport.do(req, &msg); err != nil {
		return MessageResponse{}, fmt.Errorf("update bucket %q: %w", id, err)
	}
	return msg, nil
}

// Delete deletes the bucket with the given id. The service rejects the
// call while the bucket still holds objects; use [BucketClient.Empty]
// first.
func (c *BucketClient) Delete(ctx context.Context, id string) error {
	req, err := c.transport.newRequest(ctx, http.MethodDelete, "/bucket/"+id, nil, nil)
	if err != nil {
		return err
	}

	if err := c.transport.do(req, nil); err != nil {
		return fmt.Errorf("delete bucket %q: %w", id, err)
	}
	return nil
}

// Empty removes every object from the bucket with the given id. The
// bucket itself is kept.
func (c *BucketClient) Empty(ctx context.Context, id string) error {
	req, err := c.transport.newRequest(ctx, http.MethodPost, "/bucket/"+id+"/empty", nil, nil)
	if err != nil {
		return err
	}

	if err := c.transport.do(req, nil); err != nil {
		return fmt.Errorf("empty bucket %q: %w", id, err)
	}
	return nil
}
