package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("document-bytes"))
	}))
	defer srv.Close()

	d := NewDownloader(5*time.Second, 1)
	data, name, err := d.Fetch(context.Background(), srv.URL+"/bills/invoice.png?sig=abc")
	require.NoError(t, err)
	assert.Equal(t, []byte("document-bytes"), data)
	assert.Equal(t, "invoice.png", name)
}

func TestFetchNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	d := NewDownloader(5*time.Second, 1)
	_, _, err := d.Fetch(context.Background(), srv.URL+"/missing.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestFetchSizeCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(make([]byte, 2*1024*1024))
	}))
	defer srv.Close()

	d := NewDownloader(5*time.Second, 1)
	_, _, err := d.Fetch(context.Background(), srv.URL+"/big.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "limit")
}

func TestFetchInvalidURL(t *testing.T) {
	d := NewDownloader(time.Second, 1)
	_, _, err := d.Fetch(context.Background(), "http://\x7f")
	assert.Error(t, err)
}

func TestFetchContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	d := NewDownloader(5*time.Second, 1)
	_, _, err := d.Fetch(ctx, srv.URL)
	assert.Error(t, err)
}

func TestFilenameHint(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://example.com/bills/invoice.png", "invoice.png"},
		{"https://example.com/bills/invoice.png?X-Sig=abc&exp=1", "invoice.png"},
		{"https://example.com/", DefaultFilename},
		{"https://example.com", DefaultFilename},
		{"://broken", DefaultFilename},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, FilenameHint(tt.url))
		})
	}
}
