package storage

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBucket(t *testing.T) {
	srv, seen := newTestServer(t, http.StatusOK, `{"name":"avatars"}`)
	c := NewBucketClientWithEndpoint(srv.URL, authHeaders("secret"))

	b, err := c.Create(context.Background(), "avatars", BucketOptions{Public: true})
	require.NoError(t, err)
	assert.Equal(t, "avatars", b.Name)

	require.Len(t, *seen, 1)
	req := (*seen)[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/bucket", req.Path)

	var payload struct {
		Id     string `json:"id"`
		Name   string `json:"name"`
		Public bool   `json:"public"`
	}
	require.NoError(t, json.Unmarshal(req.Body, &payload))
	assert.Equal(t, "avatars", payload.Id)
	assert.Equal(t, "avatars", payload.Name)
	assert.True(t, payload.Public)
}

func TestCreateBucketEncodesPublicFalse(t *testing.T) {
	srv, seen := newTestServer(t, http.StatusOK, `{"name":"docs"}`)
	c := NewBucketClientWithEndpoint(srv.URL, nil)

	_, err := c.Create(context.Background(), "docs", BucketOptions{})
	require.NoError(t, err)

	require.Len(t, *seen, 1)
	assert.JSONEq(t, `{"id":"docs","name":"docs","public":false}`, string((*seen)[0].Body))
}

func TestGetBucket(t *testing.T) {
	body := `{"id":"x","name":"x","owner":"o","public":true,"created_at":"2024-01-01T00:00:00.000Z","updated_at":"2024-01-02T00:00:00.000Z"}`
	srv, seen := newTestServer(t, http.StatusOK, body)
	c := NewBucketClientWithEndpoint(srv.URL, nil)

	b, err := c.Get(context.Background(), "x")
	require.NoError(t, err)

	require.Len(t, *seen, 1)
	assert.Equal(t, http.MethodGet, (*seen)[0].Method)
	assert.Equal(t, "/bucket/x", (*seen)[0].Path)

	// The decoded value is exactly the server payload, nothing added.
	assert.Equal(t, Bucket{
		Id:        "x",
		Name:      "x",
		Owner:     "o",
		Public:    true,
		CreatedAt: "2024-01-01T00:00:00.000Z",
		UpdatedAt: "2024-01-02T00:00:00.000Z",
	}, b)
}

func TestListBuckets(t *testing.T) {
	srv, seen := newTestServer(t, http.StatusOK, `[{"id":"a","name":"a","public":false},{"id":"b","name":"b","public":true}]`)
	c := NewBucketClientWithEndpoint(srv.URL, nil)

	buckets, err := c.List(context.Background())
	require.NoError(t, err)

	require.Len(t, *seen, 1)
	assert.Equal(t, http.MethodGet, (*seen)[0].Method)
	assert.Equal(t, "/bucket", (*seen)[0].Path)

	require.Len(t, buckets, 2)
	assert.Equal(t, "a", buckets[0].Id)
	assert.True(t, buckets[1].Public)
}

func TestUpdateBucket(t *testing.T) {
	srv, seen := newTestServer(t, http.StatusOK, `{"message":"Successfully updated"}`)
	c := NewBucketClientWithEndpoint(srv.URL, nil)

	msg, err := c.Update(context.Background(), "x", BucketOptions{Public: true})
	require.NoError(t, err)
	assert.Equal(t, "Successfully updated", msg.Message)

	require.Len(t, *seen, 1)
	req := (*seen)[0]
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/bucket/x", req.Path)

	// public is a JSON boolean, not the string "true".
	assert.JSONEq(t, `{"id":"x","name":"x","public":true}`, string(req.Body))
}

func TestDeleteBucket(t *testing.T) {
	srv, seen := newTestServer(t, http.StatusOK, `{"message":"Successfully deleted"}`)
	c := NewBucketClientWithEndpoint(srv.URL, nil)

	require.NoError(t, c.Delete(context.Background(), "x"))

	require.Len(t, *seen, 1)
	assert.Equal(t, http.MethodDelete, (*seen)[0].Method)
	assert.Equal(t, "/bucket/x", (*seen)[0].Path)
}

func TestDeleteBucketNotEmpty(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusConflict,
		`{"statusCode":"409","error":"InvalidRequest","message":"The bucket you tried to delete is not empty"}`)
	c := NewBucketClientWithEndpoint(srv.URL, nil)

	err := c.Delete(context.Background(), "full")
	require.Error(t, err)

	se, ok := AsError(err)
	require.True(t, ok, "server rejection must surface as a service error")
	assert.Equal(t, http.StatusConflict, se.StatusCode)
	assert.Equal(t, "InvalidRequest", se.ErrorCode)
	assert.Contains(t, se.Message, "not empty")
}

func TestEmptyBucket(t *testing.T) {
	srv, seen := newTestServer(t, http.StatusOK, `{"message":"Successfully emptied"}`)
	c := NewBucketClientWithEndpoint(srv.URL, nil)

	require.NoError(t, c.Empty(context.Background(), "x"))

	require.Len(t, *seen, 1)
	assert.Equal(t, http.MethodPost, (*seen)[0].Method)
	assert.Equal(t, "/bucket/x/empty", (*seen)[0].Path)
}

func TestBucketClientTransportError(t *testing.T) {
	c := NewBucketClientWithEndpoint("http://127.0.0.1:1", nil)

	_, err := c.Get(context.Background(), "x")
	require.Error(t, err)
	_, ok := AsError(err)
	assert.False(t, ok)
}
