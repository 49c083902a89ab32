package storage

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newObjectClient(t *testing.T, status int, response string) (*ObjectClient, *[]recordedRequest) {
	t.Helper()
	srv, seen := newTestServer(t, status, response)
	return NewObjectClientWithEndpoint(srv.URL, authHeaders("secret"), "avatars"), seen
}

func TestUpload(t *testing.T) {
	c, seen := newObjectClient(t, http.StatusOK, `{"Key":"avatars/user-1.png"}`)

	out, err := c.Upload(context.Background(), "user-1.png", strings.NewReader("png-bytes"), nil)
	require.NoError(t, err)
	assert.Equal(t, "avatars/user-1.png", out.Key)

	require.Len(t, *seen, 1)
	req := (*seen)[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/object/avatars/user-1.png", req.Path)
	assert.Equal(t, "png-bytes", string(req.Body))
	// The JSON default is replaced for binary payloads.
	assert.Equal(t, "application/octet-stream", req.Header.Get("Content-Type"))
	assert.Empty(t, req.Header.Get("x-upsert"))
}

func TestUploadWithOptions(t *testing.T) {
	c, seen := newObjectClient(t, http.StatusOK, `{"Key":"avatars/user-1.png"}`)

	_, err := c.Upload(context.Background(), "user-1.png", strings.NewReader("png-bytes"), &FileOptions{
		ContentType:  "image/png",
		CacheControl: "max-age=3600",
		Upsert:       true,
	})
	require.NoError(t, err)

	require.Len(t, *seen, 1)
	req := (*seen)[0]
	// Per-call Content-Type wins over the client default.
	assert.Equal(t, "image/png", req.Header.Get("Content-Type"))
	assert.Equal(t, "max-age=3600", req.Header.Get("Cache-Control"))
	assert.Equal(t, "true", req.Header.Get("x-upsert"))
}

func TestUpdateUsesPut(t *testing.T) {
	c, seen := newObjectClient(t, http.StatusOK, `{"Key":"avatars/user-1.png"}`)

	_, err := c.Update(context.Background(), "user-1.png", strings.NewReader("new-bytes"), nil)
	require.NoError(t, err)

	require.Len(t, *seen, 1)
	assert.Equal(t, http.MethodPut, (*seen)[0].Method)
	assert.Equal(t, "/object/avatars/user-1.png", (*seen)[0].Path)
}

func TestDownloadPassesBodyThrough(t *testing.T) {
	// Deliberately not JSON; downloads are returned verbatim.
	c, seen := newObjectClient(t, http.StatusOK, "\x89PNG\r\n")

	data, err := c.Download(context.Background(), "user-1.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG\r\n"), data)

	require.Len(t, *seen, 1)
	assert.Equal(t, http.MethodGet, (*seen)[0].Method)
	assert.Equal(t, "/object/avatars/user-1.png", (*seen)[0].Path)
}

func TestListObjectsDefaults(t *testing.T) {
	c, seen := newObjectClient(t, http.StatusOK, `[{"name":"a.png"},{"name":"b.png"}]`)

	objects, err := c.List(context.Background(), "thumbs/", SearchOptions{})
	require.NoError(t, err)
	require.Len(t, objects, 2)
	assert.Equal(t, "a.png", objects[0].Name)

	require.Len(t, *seen, 1)
	req := (*seen)[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/object/list/avatars", req.Path)
	assert.JSONEq(t,
		`{"prefix":"thumbs/","limit":100,"offset":0,"sortBy":{"column":"name","order":"asc"}}`,
		string(req.Body))
}

func TestListObjectsWithOptions(t *testing.T) {
	c, seen := newObjectClient(t, http.StatusOK, `[]`)

	_, err := c.List(context.Background(), "", SearchOptions{
		Limit:  10,
		Offset: 20,
		SortBy: SortBy{Column: "updated_at", Order: "desc"},
	})
	require.NoError(t, err)

	require.Len(t, *seen, 1)
	assert.JSONEq(t,
		`{"prefix":"","limit":10,"offset":20,"sortBy":{"column":"updated_at","order":"desc"}}`,
		string((*seen)[0].Body))
}

func TestMove(t *testing.T) {
	c, seen := newObjectClient(t, http.StatusOK, `{"message":"Successfully moved"}`)

	require.NoError(t, c.Move(context.Background(), "old/a.png", "new/a.png"))

	require.Len(t, *seen, 1)
	req := (*seen)[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/object/move", req.Path)
	assert.JSONEq(t,
		`{"bucketId":"avatars","sourceKey":"old/a.png","destinationKey":"new/a.png"}`,
		string(req.Body))
}

func TestCopy(t *testing.T) {
	c, seen := newObjectClient(t, http.StatusOK, `{"Key":"avatars/new/a.png"}`)

	require.NoError(t, c.Copy(context.Background(), "old/a.png", "new/a.png"))

	require.Len(t, *seen, 1)
	req := (*seen)[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/object/copy", req.Path)
	assert.JSONEq(t,
		`{"bucketId":"avatars","sourceKey":"old/a.png","destinationKey":"new/a.png"}`,
		string(req.Body))
}

func TestRemove(t *testing.T) {
	c, seen := newObjectClient(t, http.StatusOK, `[]`)

	require.NoError(t, c.Remove(context.Background(), "a.png", "b.png"))

	require.Len(t, *seen, 1)
	req := (*seen)[0]
	assert.Equal(t, http.MethodDelete, req.Method)
	assert.Equal(t, "/object/avatars", req.Path)
	assert.JSONEq(t, `{"prefixes":["a.png","b.png"]}`, string(req.Body))
}

func TestCreateSignedURL(t *testing.T) {
	srv, seen := newTestServer(t, http.StatusOK,
		`{"signedURL":"/object/sign/avatars/user-1.png?token=abc"}`)
	c := NewObjectClientWithEndpoint(srv.URL, nil, "avatars")

	signed, err := c.CreateSignedURL(context.Background(), "user-1.png", 60)
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/object/sign/avatars/user-1.png?token=abc", signed.SignedURL)

	require.Len(t, *seen, 1)
	req := (*seen)[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/object/sign/avatars/user-1.png", req.Path)
	assert.JSONEq(t, `{"expiresIn":60}`, string(req.Body))
}

func TestGetPublicURL(t *testing.T) {
	c := NewObjectClientWithEndpoint("https://abcdefgh.supabase.co/storage/v1", nil, "avatars")

	url := c.GetPublicURL("dir/user-1.png")
	assert.Equal(t, "https://abcdefgh.supabase.co/storage/v1/object/public/avatars/dir/user-1.png", url)

	// Leading slashes in the path do not double up.
	assert.Equal(t, url, c.GetPublicURL("/dir/user-1.png"))
}

func TestObjectErrorCarriesStatus(t *testing.T) {
	c, _ := newObjectClient(t, http.StatusNotFound,
		`{"statusCode":"404","error":"not_found","message":"Object not found"}`)

	_, err := c.Download(context.Background(), "missing.png")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}
