package archive

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobdesk/internal/config"
	"jobdesk/internal/logging"
)

type fakeBucket struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func (f *fakeBucket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[r.URL.Path] = body
		f.types[r.URL.Path] = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	case http.MethodHead:
		if r.URL.Path == "/archive-bucket" || r.URL.Path == "/archive-bucket/" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Archive.Enabled = true
	cfg.Archive.AccessKeyID = "key"
	cfg.Archive.AccessKeySecret = "secret"
	cfg.Archive.BucketName = "archive-bucket"
	cfg.Archive.Region = "fra1"
	cfg.Archive.Prefix = "applications"
	return cfg
}

func newTestArchiver(t *testing.T, cfg *config.Config) (*SpacesArchiver, *fakeBucket) {
	t.Helper()
	bucket := &fakeBucket{objects: map[string][]byte{}, types: map[string]string{}}
	srv := httptest.NewServer(bucket)
	t.Cleanup(srv.Close)

	a, err := newSpacesArchiver(cfg, srv.URL, true, logging.NewMultiLogger())
	require.NoError(t, err)
	return a, bucket
}

func TestArchive_PutsUnderPrefix(t *testing.T) {
	cfg := testConfig()
	cfg.Archive.CDNEndpoint = "https://cdn.example.com/"
	a, bucket := newTestArchiver(t, cfg)

	url, err := a.Archive(context.Background(), "October/09_Acme/CV.pdf", []byte("%PDF"), "application/pdf")
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/applications/October/09_Acme/CV.pdf", url)
	assert.Equal(t, []byte("%PDF"), bucket.objects["/archive-bucket/applications/October/09_Acme/CV.pdf"])
	assert.Equal(t, "application/pdf", bucket.types["/archive-bucket/applications/October/09_Acme/CV.pdf"])
}

func TestObjectURL_Fallbacks(t *testing.T) {
	cfg := testConfig()
	cfg.Archive.BucketURL = "archive-bucket.fra1.digitaloceanspaces.com"
	a, _ := newTestArchiver(t, cfg)
	assert.Equal(t, "https://archive-bucket.fra1.digitaloceanspaces.com/k.pdf", a.objectURL("k.pdf"))

	a.bucketURL = ""
	assert.Equal(t, "https://archive-bucket.fra1.digitaloceanspaces.com/k.pdf", a.objectURL("k.pdf"))
}

func TestIsHealthy(t *testing.T) {
	a, _ := newTestArchiver(t, testConfig())
	assert.True(t, a.IsHealthy(context.Background()))

	a.bucketName = "missing"
	assert.False(t, a.IsHealthy(context.Background()))
}

func TestNewSpacesArchiver_RequiresCredentials(t *testing.T) {
	cfg := testConfig()
	cfg.Archive.AccessKeySecret = ""

	_, err := NewSpacesArchiver(cfg, logging.NewMultiLogger())
	assert.Error(t, err)
}
