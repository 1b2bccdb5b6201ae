package posting

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobdesk/internal/config"
	"jobdesk/internal/logging"
)

const postingPage = `<!doctype html>
<html>
<head>
  <title>Careers | Acme</title>
  <meta property="og:title" content="Backend Engineer">
  <meta property="og:site_name" content="Acme Corp">
  <script>var tracking = true;</script>
</head>
<body>
  <nav>Home Jobs About</nav>
  <div class="job-description">
    <h2>About the role</h2>
    <p>You will build   Go services that process millions of events per day.</p>
    <ul><li>Design APIs</li><li>Operate Kubernetes</li></ul>
  </div>
  <footer>Copyright Acme</footer>
</body>
</html>`

func TestParse_PrefersMetadataAndJobContainer(t *testing.T) {
	u, _ := url.Parse("https://jobs.acme.example/123")

	preview, err := Parse(strings.NewReader(postingPage), u, NewCleaner())
	require.NoError(t, err)

	assert.Equal(t, "Backend Engineer", preview.Title)
	assert.Equal(t, "Acme Corp", preview.Company)
	assert.Contains(t, preview.Description, "You will build Go services")
	assert.Contains(t, preview.Description, "Design APIs\nOperate Kubernetes")
	assert.NotContains(t, preview.Description, "Home Jobs About")
	assert.NotContains(t, preview.Description, "tracking")
	assert.NotContains(t, preview.Description, "Copyright")
}

func TestParse_FallsBackToBodyAndHost(t *testing.T) {
	u, _ := url.Parse("https://www.example.org/job")
	page := `<html><head><title>Data Engineer</title></head><body><p>Short.</p><p>Please enable JavaScript to continue.</p></body></html>`

	preview, err := Parse(strings.NewReader(page), u, NewCleaner())
	require.NoError(t, err)

	assert.Equal(t, "Data Engineer", preview.Title)
	assert.Equal(t, "example.org", preview.Company)
	assert.Equal(t, "Short.", preview.Description)
}

func TestCleanText(t *testing.T) {
	c := NewCleaner()
	got := c.CleanText("  one   two \n\n\n\n three\t\tfour  ")
	assert.Equal(t, "one two\n\nthree four", got)
}

func TestFetcher_Fetch(t *testing.T) {
	var userAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, postingPage)
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Posting.UserAgent = "jobdesk-test"
	fetcher := NewFetcher(cfg, logging.NewMultiLogger())

	preview, err := fetcher.Fetch(context.Background(), srv.URL+"/job")
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", preview.Title)
	assert.Equal(t, "jobdesk-test", userAgent)

	_, err = fetcher.Fetch(context.Background(), srv.URL+"/missing")
	assert.ErrorContains(t, err, "status 404")
}

func TestFetcher_RejectsNonHTTPURL(t *testing.T) {
	fetcher := NewFetcher(config.Default(), logging.NewMultiLogger())

	for _, raw := range []string{"", "ftp://example.com/job", "/relative/path", "javascript:alert(1)"} {
		_, err := fetcher.Fetch(context.Background(), raw)
		assert.ErrorIs(t, err, ErrInvalidURL, raw)
	}
}
