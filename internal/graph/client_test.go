package graph_test

import (
	"context"
	"net/http"
	"testing"

	"jobdesk/internal/config"
	"jobdesk/internal/graph"
	"jobdesk/internal/graph/graphtest"
	"jobdesk/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*graph.Client, *graphtest.Server) {
	t.Helper()
	srv := graphtest.NewServer()
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.Graph.BaseURL = srv.URL
	cfg.Graph.RateLimit = 60000

	return graph.NewClient(cfg, logging.NewMultiLogger()).WithToken("test-token"), srv
}

func TestClient_RequiresToken(t *testing.T) {
	client, _ := newClient(t)

	_, err := client.WithToken("").Download(context.Background(), "Jobs/JobTracker.xlsx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no access token")
}

func TestClient_UploadDownload(t *testing.T) {
	client, srv := newClient(t)
	ctx := context.Background()

	require.NoError(t, client.Upload(ctx, "Jobs/templates/Bullet Bank/notes.txt", "text/plain", []byte("hello")))

	data, err := client.Download(ctx, "Jobs/templates/Bullet Bank/notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	assert.True(t, srv.HasFolder("Jobs/templates/Bullet Bank"))
}

func TestClient_DownloadMissingIsAPIError(t *testing.T) {
	client, _ := newClient(t)

	_, err := client.Download(context.Background(), "Jobs/missing.docx")
	require.Error(t, err)

	var apiErr *graph.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Contains(t, apiErr.Op, "Jobs/missing.docx")
	assert.True(t, graph.IsNotFound(err))
}

func TestClient_Exists(t *testing.T) {
	client, srv := newClient(t)
	ctx := context.Background()
	srv.Put("Jobs/JobTracker.xlsx", []byte("xlsx"))

	ok, err := client.Exists(ctx, "Jobs/JobTracker.xlsx")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.Exists(ctx, "Jobs/Other.xlsx")
	require.NoError(t, err)
	assert.False(t, ok)

	srv.FailOn("Jobs/Broken.xlsx", http.StatusInternalServerError)
	_, err = client.Exists(ctx, "Jobs/Broken.xlsx")
	var apiErr *graph.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
}

func TestClient_EnsureFolderCreatesMissingAncestors(t *testing.T) {
	client, srv := newClient(t)
	ctx := context.Background()
	srv.Put("Jobs/JobTracker.xlsx", []byte("xlsx"))

	require.NoError(t, client.EnsureFolder(ctx, "Jobs/applications/October/19_Acme"))

	assert.True(t, srv.HasFolder("Jobs/applications"))
	assert.True(t, srv.HasFolder("Jobs/applications/October"))
	assert.True(t, srv.HasFolder("Jobs/applications/October/19_Acme"))
	assert.Equal(t, 1, srv.Count(http.MethodPost, "Jobs", "/children"))

	// second call only probes
	before := len(srv.Requests())
	require.NoError(t, client.EnsureFolder(ctx, "Jobs/applications/October/19_Acme"))
	assert.Equal(t, before+1, len(srv.Requests()))
}

func TestClient_CopyFileSkipsExistingDestination(t *testing.T) {
	client, srv := newClient(t)
	ctx := context.Background()
	srv.Put("Jobs/templates/Backend/CV.docx", []byte("template"))
	srv.Put("Jobs/applications/October/19_Acme/CV.docx", []byte("already edited"))

	copied, err := client.CopyFile(ctx, "CV.docx", "Jobs/templates/Backend", "Jobs/applications/October/19_Acme")
	require.NoError(t, err)
	assert.False(t, copied)

	data, _ := srv.File("Jobs/applications/October/19_Acme/CV.docx")
	assert.Equal(t, "already edited", string(data))
	assert.Zero(t, srv.Count(http.MethodGet, "Jobs/templates/Backend/CV.docx", "/content"))
	assert.Zero(t, srv.Count(http.MethodPut, "Jobs/applications/October/19_Acme/CV.docx", "/content"))
}

func TestClient_CopyFileTransfersWhenMissing(t *testing.T) {
	client, srv := newClient(t)
	ctx := context.Background()
	srv.Put("Jobs/templates/Backend/CV_template.json", []byte(`{"Company":{}}`))

	copied, err := client.CopyFile(ctx, "CV_template.json", "Jobs/templates/Backend", "Jobs/applications/October/19_Acme")
	require.NoError(t, err)
	assert.True(t, copied)

	data, ok := srv.File("Jobs/applications/October/19_Acme/CV_template.json")
	require.True(t, ok)
	assert.JSONEq(t, `{"Company":{}}`, string(data))
}

func TestClient_CopyFileMissingSource(t *testing.T) {
	client, _ := newClient(t)

	_, err := client.CopyFile(context.Background(), "CV.docx", "Jobs/templates/Nope", "Jobs/applications/October/19_Acme")
	assert.True(t, graph.IsNotFound(err))
}

func TestClient_JSONRoundTrip(t *testing.T) {
	client, srv := newClient(t)
	ctx := context.Background()

	in := map[string][]string{"Backend": {"Built **APIs**"}}
	require.NoError(t, client.WriteJSON(ctx, "Jobs/templates/Bullet Bank/CV_WEBullets.json", in))

	raw, _ := srv.File("Jobs/templates/Bullet Bank/CV_WEBullets.json")
	assert.Contains(t, string(raw), "\n  \"Backend\"")

	var out map[string][]string
	require.NoError(t, client.ReadJSON(ctx, "Jobs/templates/Bullet Bank/CV_WEBullets.json", &out))
	assert.Equal(t, in, out)
}

func TestClient_ReadJSONInvalid(t *testing.T) {
	client, srv := newClient(t)
	srv.Put("Jobs/broken.json", []byte("{"))

	var out map[string]interface{}
	err := client.ReadJSON(context.Background(), "Jobs/broken.json", &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode Jobs/broken.json")
}

func TestClient_DownloadAsPDF(t *testing.T) {
	client, srv := newClient(t)
	srv.Put("Jobs/applications/October/19_Acme/FINAL_CL.docx", []byte("docx"))

	pdf, err := client.DownloadAsPDF(context.Background(), "Jobs/applications/October/19_Acme/FINAL_CL.docx", "Jobs/applications/October/19_Acme/FINAL_CL.pdf")
	require.NoError(t, err)

	stored, ok := srv.File("Jobs/applications/October/19_Acme/FINAL_CL.pdf")
	require.True(t, ok)
	assert.Equal(t, pdf, stored)
	assert.Equal(t, "%PDF-converted:docx", string(stored))
}

func TestClient_AppendRowLeavesExistingContent(t *testing.T) {
	client, srv := newClient(t)
	ctx := context.Background()
	srv.Put("Jobs/JobTracker.xlsx", []byte("existing workbook"))

	row := []interface{}{"a1b2c3d4", "Backend", "19-Oct-2026", "Acme", "https://acme.example/jobs/1", "No", "Preparation"}
	require.NoError(t, client.AppendRow(ctx, "Jobs/JobTracker.xlsx", "JobTable", row))
	require.NoError(t, client.AppendRow(ctx, "Jobs/JobTracker.xlsx", "JobTable", row))

	data, _ := srv.File("Jobs/JobTracker.xlsx")
	assert.Equal(t, "existing workbook", string(data))
	assert.Zero(t, srv.Count(http.MethodPut, "Jobs/JobTracker.xlsx", "/content"))

	rows := srv.Rows("Jobs/JobTracker.xlsx", "JobTable")
	require.Len(t, rows, 2)
	assert.Equal(t, "Acme", rows[0][3])

	opened, closed := srv.Sessions()
	assert.Equal(t, 2, opened)
	assert.Equal(t, 2, closed)
}

func TestClient_AppendRowSessionFailure(t *testing.T) {
	client, _ := newClient(t)

	err := client.AppendRow(context.Background(), "Jobs/Missing.xlsx", "JobTable", []interface{}{"x"})
	var apiErr *graph.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Contains(t, apiErr.Op, "create workbook session")
}
