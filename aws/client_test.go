package aws

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadDashboard(t *testing.T) {
	var method, path, contentType string
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		path = r.URL.Path
		contentType = r.Header.Get("Content-Type")
		body, _ = io.ReadAll(r.Body)
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, err := NewClient("us-east-1", "inbox-snapshots", WithEndpoint(srv.URL), WithStaticCredentials("id", "secret"))
	require.NoError(t, err)

	at := time.Date(2025, 11, 1, 15, 0, 0, 0, time.UTC)
	snap, err := c.UploadDashboard(context.Background(), []byte(`{"general":{}}`), at)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/inbox-snapshots/dashboards/2025/11/01/150000.000000000.json", path)
	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, `{"general":{}}`, string(body))

	assert.Equal(t, "inbox-snapshots", snap.Bucket)
	assert.Equal(t, "dashboards/2025/11/01/150000.000000000.json", snap.Key)
	assert.True(t, strings.HasPrefix(snap.URL, srv.URL), snap.URL)
	assert.Contains(t, snap.URL, "X-Amz-Signature=")
}

func TestUploadDashboardFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`<Error><Code>AccessDenied</Code><Message>denied</Message></Error>`))
	}))
	defer srv.Close()

	c, err := NewClient("us-east-1", "inbox-snapshots", WithEndpoint(srv.URL), WithStaticCredentials("id", "secret"))
	require.NoError(t, err)

	_, err = c.UploadDashboard(context.Background(), []byte(`{}`), time.Now())
	assert.Error(t, err)
}
