package host

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anams/page-server/pkg/document"
	"github.com/anams/page-server/pkg/predict"
	"github.com/anams/page-server/pkg/registry"
	"github.com/anams/page-server/pkg/render"
	"github.com/anams/page-server/pkg/storage"
)

type fakePredictor struct {
	ready bool
	got   predict.Input
}

func (f *fakePredictor) Predict(ctx context.Context, in predict.Input) map[string]string {
	f.got = in
	return map[string]string{"RNN": "lose", "SVM": "maintain", "KNN": predict.ResultLoadFailed}
}

func (f *fakePredictor) Ready() bool { return f.ready }

type failingPinger struct{}

func (failingPinger) Ping(ctx context.Context) error { return errors.New("bucket unreachable") }

type fixture struct {
	dir    string
	server *Server
	pred   *fakePredictor
}

func newFixture(t *testing.T, entries []registry.Entry) *fixture {
	t.Helper()
	dir := t.TempDir()
	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	write("index.html", "<h1>research</h1>")
	write("index2.html", "<h1>balancer</h1>")
	write("blank.html", " \n\t ")

	store, err := storage.NewFileStorage(dir)
	require.NoError(t, err)
	reg, err := registry.NewStatic(entries)
	require.NoError(t, err)
	rnd, err := render.New("htmls")
	require.NoError(t, err)

	pred := &fakePredictor{ready: true}
	srv := New(Options{
		Title:     "Test Pages",
		Registry:  reg,
		Resolver:  document.NewResolver(store, nil),
		Renderer:  rnd,
		Predictor: pred,
		Store:     store,
		Routes: []Route{
			{Path: "/", ID: "index.html"},
			{Path: "/research", ID: "index.html"},
			{Path: "/balancer/", ID: "index2.html"},
			{Path: "/missing", ID: "index9.html"},
			{Path: "/blank", ID: "blank.html"},
		},
	})
	return &fixture{dir: dir, server: srv, pred: pred}
}

func defaultEntries() []registry.Entry {
	return []registry.Entry{
		{Name: "Research", ID: "index.html"},
		{Name: "Balancer", ID: "index2.html"},
		{Name: "Gone", ID: "index9.html"},
	}
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestRouteAliasesServeContent(t *testing.T) {
	f := newFixture(t, defaultEntries())
	h := f.server.Handler()

	for _, path := range []string{"/", "/research"} {
		rec := get(t, h, path)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "<h1>research</h1>", rec.Body.String(), path)
	}

	rec := get(t, h, "/balancer")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<h1>balancer</h1>", rec.Body.String())
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestRouteFailures(t *testing.T) {
	f := newFixture(t, defaultEntries())
	h := f.server.Handler()

	rec := get(t, h, "/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), filepath.Join(f.dir, "index9.html"))

	rec = get(t, h, "/blank")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "empty")

	rec = get(t, h, "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnknownRouteIsNotAFileLookup(t *testing.T) {
	f := newFixture(t, defaultEntries())
	rec := get(t, f.server.Handler(), "/a/b/c")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Page not found")
	assert.Contains(t, body, "/a/b/c")
	assert.NotContains(t, body, "File not found")
	assert.NotContains(t, body, "directory")
	assert.NotContains(t, body, f.dir)
}

func TestRouteSeesEditsWithoutRestart(t *testing.T) {
	f := newFixture(t, defaultEntries())
	h := f.server.Handler()

	require.NoError(t, os.WriteFile(filepath.Join(f.dir, "index.html"), []byte("<h1>v2</h1>"), 0o644))
	assert.Equal(t, "<h1>v2</h1>", get(t, h, "/").Body.String())
}

func TestPagesSelectsFirstByDefault(t *testing.T) {
	f := newFixture(t, defaultEntries())
	rec := get(t, f.server.Handler(), "/pages")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<h1>research</h1>")
	assert.Contains(t, body, `href="?doc=index.html" class="selected"`)
	assert.Contains(t, body, "3 document(s) available")
}

func TestPagesSelectedDocument(t *testing.T) {
	f := newFixture(t, defaultEntries())
	rec := get(t, f.server.Handler(), "/pages?doc=index2.html")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h1>balancer</h1>")
	assert.NotContains(t, rec.Body.String(), "<h1>research</h1>")
}

func TestPagesListedButMissing(t *testing.T) {
	f := newFixture(t, defaultEntries())
	rec := get(t, f.server.Handler(), "/pages?doc=index9.html")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "File not found")
	assert.Contains(t, rec.Body.String(), "Research")
}

func TestPagesUnlistedDocumentIsNotFound(t *testing.T) {
	f := newFixture(t, defaultEntries())
	// blank.html exists on disk but is not offered by the registry
	rec := get(t, f.server.Handler(), "/pages?doc=blank.html")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not in the document list")
}

func TestPagesEmptyRegistryWarns(t *testing.T) {
	f := newFixture(t, nil)
	rec := get(t, f.server.Handler(), "/pages")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), render.EmptyRegistryWarning)
}

func TestAPIListDocuments(t *testing.T) {
	f := newFixture(t, defaultEntries())
	rec := get(t, f.server.Handler(), "/api/documents")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Registry  string           `json:"registry"`
		Documents []registry.Entry `json:"documents"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "static", resp.Registry)
	assert.Equal(t, defaultEntries(), resp.Documents)
}

func TestAPIDocument(t *testing.T) {
	f := newFixture(t, defaultEntries())
	h := f.server.Handler()

	rec := get(t, h, "/api/documents/index.html")
	require.Equal(t, http.StatusOK, rec.Code)
	var ok map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ok))
	assert.Equal(t, true, ok["ok"])
	assert.Equal(t, "<h1>research</h1>", ok["content"])
	assert.Equal(t, filepath.Join(f.dir, "index.html"), ok["location"])
	assert.NotContains(t, ok, "reason")

	rec = get(t, h, "/api/documents/index.html?meta=1")
	var meta map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &meta))
	assert.NotContains(t, meta, "content")

	rec = get(t, h, "/api/documents/index9.html")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	var nf map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &nf))
	assert.Equal(t, false, nf["ok"])
	assert.Equal(t, "not_found", nf["reason"])
}

func TestAPIPredict(t *testing.T) {
	f := newFixture(t, defaultEntries())
	body := `{"weight":82,"height":178,"heartRate":70,"targetWeight":75,"targetDuration":12,"workoutDays":5,"workoutTime":60}`
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Predictions map[string]string `json:"predictions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "lose", resp.Predictions["RNN"])
	assert.Equal(t, 82.0, f.pred.got.Weight)
}

func TestAPIPredictRejectsIncompleteInput(t *testing.T) {
	f := newFixture(t, defaultEntries())
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(`{"weight":82}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing features")
}

func TestAPIPredictDisabled(t *testing.T) {
	f := newFixture(t, defaultEntries())
	f.server.predictor = nil
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRequestIDPropagated(t *testing.T) {
	f := newFixture(t, defaultEntries())
	h := f.server.Handler()

	rec := get(t, h, "/health")
	assert.NotEmpty(t, rec.Header().Get(HeaderRequestID))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(HeaderRequestID))
}

func TestHealthServer(t *testing.T) {
	f := newFixture(t, defaultEntries())
	h := f.server.HealthHandler()

	assert.Equal(t, http.StatusOK, get(t, h, "/health").Code)
	assert.Equal(t, http.StatusOK, get(t, h, "/ready").Code)

	metrics := get(t, h, "/metrics")
	assert.Equal(t, http.StatusOK, metrics.Code)
	assert.Contains(t, metrics.Body.String(), "go_goroutines")

	f.server.store = failingPinger{}
	rec := get(t, h, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "bucket unreachable")
}

func TestEventsBroadcastOnChange(t *testing.T) {
	f := newFixture(t, defaultEntries())
	ts := httptest.NewServer(f.server.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, line, "connected")

	require.Eventually(t, func() bool { return f.server.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	changes := make(chan struct{}, 1)
	watchCtx, stop := context.WithCancel(context.Background())
	defer stop()
	go f.server.WatchChanges(watchCtx, changes)
	changes <- struct{}{}

	var event, data string
	for event == "" || data == "" {
		line, err := reader.ReadString('\n')
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event: "))
		case strings.HasPrefix(line, "data: ") && event != "":
			data = strings.TrimPrefix(line, "data: ")
		}
	}
	assert.Equal(t, EventDocumentsChanged, event)
	assert.Contains(t, data, "index2.html")
}

func TestWatchChangesStopsOnClose(t *testing.T) {
	f := newFixture(t, defaultEntries())
	changes := make(chan struct{})
	done := make(chan struct{})
	go func() {
		f.server.WatchChanges(context.Background(), changes)
		close(done)
	}()
	close(changes)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("WatchChanges did not return after channel close")
	}
}
