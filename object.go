package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ObjectInfo describes an object as reported by the list endpoint.
type ObjectInfo struct {
	Name           string         `json:"name"`
	Id             string         `json:"id,omitempty"`
	UpdatedAt      string         `json:"updated_at,omitempty"`
	CreatedAt      string         `json:"created_at,omitempty"`
	LastAccessedAt string         `json:"last_accessed_at,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// FileOptions configures an upload or replace. A nil *FileOptions is
// valid and means defaults: application/octet-stream content, no cache
// directives, no upsert.
type FileOptions struct {
	// ContentType is sent as the Content-Type of the payload.
	ContentType string

	// CacheControl is passed through to the service as the object's
	// Cache-Control setting.
	CacheControl string

	// Upsert makes the upload overwrite an existing object at the same
	// path instead of failing.
	Upsert bool
}

// headers translates the options into per-request headers. These are
// merged on top of the client headers, so an explicit ContentType
// overrides the default Content-Type header.
func (o *FileOptions) headers() map[string]string {
	h := map[string]string{"Content-Type": "application/octet-stream"}
	if o == nil {
		return h
	}
	if o.ContentType != "" {
		h["Content-Type"] = o.ContentType
	}
	if o.CacheControl != "" {
		h["Cache-Control"] = o.CacheControl
	}
	if o.Upsert {
		h["x-upsert"] = "true"
	}
	return h
}

// SortBy orders list results by a column.
type SortBy struct {
	Column string `json:"column"`
	Order  string `json:"order"`
}

// SearchOptions filters and pages list results. Zero values fall back
// to the service defaults (limit 100, offset 0, name ascending).
type SearchOptions struct {
	Limit  int
	Offset int
	SortBy SortBy
}

// UploadResponse is the service's acknowledgement of an upload, with
// Key holding "<bucket>/<path>".
type UploadResponse struct {
	Key string `json:"Key"`
}

// SignedURL is a time-limited, pre-authenticated URL for one object.
type SignedURL struct {
	// SignedURL is fully qualified, ready to hand to any HTTP client.
	SignedURL string `json:"signedURL"`
}

// ObjectClient performs object-level operations inside a single
// bucket. Construct one with [NewObjectClient],
// [NewObjectClientWithEndpoint], or [Client.From].
//
// Object paths are passed through to the service as supplied; the
// client does not validate or rewrite them.
type ObjectClient struct {
	transport *transport
	bucket    string
}

// NewObjectClient creates an object client for bucket on the canonical
// Supabase endpoint derived from projectRef, authenticated with apiKey.
func NewObjectClient(projectRef, apiKey, bucket string) *ObjectClient {
	return &ObjectClient{
		transport: newTransport(projectURL(projectRef), authHeaders(apiKey)),
		bucket:    bucket,
	}
}

// NewObjectClientWithEndpoint creates an object client for bucket
// against an explicit storage endpoint. headers are merged into every
// request on top of the defaults.
func NewObjectClientWithEndpoint(endpoint string, headers map[string]string, bucket string) *ObjectClient {
	return &ObjectClient{transport: newTransport(endpoint, headers), bucket: bucket}
}

// Bucket returns the bucket id this client is scoped to.
func (c *ObjectClient) Bucket() string {
	return c.bucket
}

// Upload stores the payload read from body at path. Uploading to an
// existing path fails unless opts.Upsert is set.
func (c *ObjectClient) Upload(ctx context.Context, path string, body io.Reader, opts *FileOptions) (UploadResponse, error) {
	return c.put(ctx, http.MethodPost, path, body, opts)
}

// Update replaces the object at path with the payload read from body.
// The object must already exist.
func (c *ObjectClient) Update(ctx context.Context, path string, body io.Reader, opts *FileOptions) (UploadResponse, error) {
	return c.put(ctx, http.MethodPut, path, body, opts)
}

func (c *ObjectClient) put(ctx context.Context, method, path string, body io.Reader, opts *FileOptions) (UploadResponse, error) {
	req, err := c.transport.newRequest(ctx, method, c.objectPath(path), body, opts.headers())
	if err != nil {
		return UploadResponse{}, err
	}

	var out UploadResponse
	if err := c.transport.do(req, &out); err != nil {
		return UploadResponse{}, fmt.Errorf("upload object %s/%s: %w", c.bucket, path, err)
	}
	return out, nil
}

// Download retrieves the object at path and returns its content
// verbatim. The body is not interpreted, whatever its type.
func (c *ObjectClient) Download(ctx context.Context, path string) ([]byte, error) {
	req, err := c.transport.newRequest(ctx, http.MethodGet, c.objectPath(path), nil, nil)
	if err != nil {
		return nil, err
	}

	data, err := c.transport.doRaw(req)
	if err != nil {
		return nil, fmt.Errorf("download object %s/%s: %w", c.bucket, path, err)
	}
	return data, nil
}

type listRequest struct {
	Prefix string `json:"prefix"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
	SortBy SortBy `json:"sortBy"`
}

// List returns the objects under prefix in this bucket. Results are a
// single page sized by opts.Limit; the library does not paginate.
func (c *ObjectClient) List(ctx context.Context, prefix string, opts SearchOptions) ([]ObjectInfo, error) {
	payload := listRequest{
		Prefix: prefix,
		Limit:  opts.Limit,
		Offset: opts.Offset,
		SortBy: opts.SortBy,
	}
	if payload.Limit == 0 {
		payload.Limit = 100
	}
	if payload.SortBy.Column == "" {
		payload.SortBy = SortBy{Column: "name", Order: "asc"}
	}

	req, err := c.transport.newJSONRequest(ctx, http.MethodPost, "/object/list/"+c.bucket, payload)
	if err != nil {
		return nil, err
	}

	var objects []ObjectInfo
	if err := c.transport.do(req, &objects); err != nil {
		return nil, fmt.Errorf("list objects in %s: %w", c.bucket, err)
	}
	return objects, nil
}

type transferRequest struct {
	BucketId       string `json:"bucketId"`
	SourceKey      string `json:"sourceKey"`
	DestinationKey string `json:"destinationKey"`
}

// Move renames the object at src to dst within this bucket.
func (c *ObjectClient) Move(ctx context.Context, src, dst string) error {
	if err := c.transfer(ctx, "/object/move", src, dst); err != nil {
		return fmt.Errorf("move object %s/%s -> %s: %w", c.bucket, src, dst, err)
	}
	return nil
}

// Copy duplicates the object at src to dst within this bucket.
func (c *ObjectClient) Copy(ctx context.Context, src, dst string) error {
	if err := c.transfer(ctx, "/object/copy", src, dst); err != nil {
		return fmt.Errorf("copy object %s/%s -> %s: %w", c.bucket, src, dst, err)
	}
	return nil
}

func (c *ObjectClient) transfer(ctx context.Context, path, src, dst string) error {
	req, err := c.transport.newJSONRequest(ctx, http.MethodPost, path,
		transferRequest{BucketId: c.bucket, SourceKey: src, DestinationKey: dst})
	if err != nil {
		return err
	}
	return c.transport.do(req, nil)
}

type removeRequest struct {
	Prefixes []string `json:"prefixes"`
}

// Remove deletes one or more objects by path in a single call.
func (c *ObjectClient) Remove(ctx context.Context, paths ...string) error {
	req, err := c.transport.newJSONRequest(ctx, http.MethodDelete, "/object/"+c.bucket,
		removeRequest{Prefixes: paths})
	if err != nil {
		return err
	}

	if err := c.transport.do(req, nil); err != nil {
		return fmt.Errorf("remove objects in %s: %w", c.bucket, err)
	}
	return nil
}

type signRequest struct {
	ExpiresIn int `json:"expiresIn"`
}

// CreateSignedURL asks the service for a pre-authenticated URL for the
// object at path, valid for expiresIn seconds. The returned URL is
// absolute.
func (c *ObjectClient) CreateSignedURL(ctx context.Context, path string, expiresIn int) (SignedURL, error) {
	req, err := c.transport.newJSONRequest(ctx, http.MethodPost,
		"/object/sign/"+c.bucket+"/"+trimPath(path), signRequest{ExpiresIn: expiresIn})
	if err != nil {
		return SignedURL{}, err
	}

	var signed SignedURL
	if err := c.transport.do(req, &signed); err != nil {
		return SignedURL{}, fmt.Errorf("sign object %s/%s: %w", c.bucket, path, err)
	}

	// The service answers with a URL relative to the storage root.
	signed.SignedURL = c.transport.baseURL + signed.SignedURL
	return signed, nil
}

// GetPublicURL computes the public URL of the object at path. No
// request is made; the URL only resolves if the bucket is public.
func (c *ObjectClient) GetPublicURL(path string) string {
	return c.transport.baseURL + "/object/public/" + c.bucket + "/" + trimPath(path)
}

func (c *ObjectClient) objectPath(path string) string {
	return "/object/" + c.bucket + "/" + trimPath(path)
}

func trimPath(path string) string {
	return strings.TrimLeft(path, "/")
}
