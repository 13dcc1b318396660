package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/kepmap"
	"github.com/agentstation/kepmap/internal/metrics"
	"github.com/agentstation/kepmap/pkg/constants"
	"github.com/agentstation/kepmap/pkg/logging"
)

const stellarCSV = `kepid,teff,mass,mass_err1,mass_err2,radius,radius_err1,radius_err2,feh,feh_err1,feh_err2
10797460,5455,0.919,0.052,-0.046,0.927,0.1,-0.05,0.14,0.15,-0.15
757099,5519,0.865,,,0.868,,,-0.04,,
`

const koiCSV = `kepid,kepoi_name,koi_count,ra,dec,koi_gmag,koi_rmag,koi_imag,koi_zmag,koi_jmag,koi_hmag,koi_kmag,koi_kepmag
10797460,K00752.01,2,291.93423,48.141651,15.0,14.0,13.5,13.2,12.1,11.8,11.7,14.3
10797460,K00752.02,2,291.93423,48.141651,15.0,14.0,13.5,13.2,12.1,11.8,11.7,14.3
`

// fakeArchive serves the catalog tables, or 500 for every request when down.
type fakeArchive struct {
	mu     sync.Mutex
	bodies map[string]string
	down   bool
}

func (a *fakeArchive) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	body, ok := a.bodies[r.URL.Query().Get("table")]
	down := a.down
	a.mu.Unlock()
	if down || !ok {
		http.Error(w, "archive unavailable", http.StatusInternalServerError)
		return
	}
	_, _ = io.WriteString(w, body)
}

func (a *fakeArchive) set(name, body string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.bodies[name] = body
}

type testEnv struct {
	archive  *fakeArchive
	registry *prometheus.Registry
	handler  http.Handler
}

func newTestEnv(t *testing.T, down bool) *testEnv {
	t.Helper()
	a := &fakeArchive{
		bodies: map[string]string{
			constants.StellarTable:   stellarCSV,
			constants.CandidateTable: koiCSV,
		},
		down: down,
	}
	archive := httptest.NewServer(a)
	t.Cleanup(archive.Close)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	client, err := kepmap.New(
		kepmap.WithDataDir(t.TempDir()),
		kepmap.WithArchiveURL(archive.URL),
		kepmap.WithLogger(logging.NewNopLogger()),
		kepmap.WithMetrics(m),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	cfg := DefaultConfig()
	cfg.RateLimit = 0
	srv, err := New(client, cfg, WithLogger(logging.NewNopLogger()), WithMetrics(m, reg))
	require.NoError(t, err)

	return &testEnv{archive: a, registry: reg, handler: srv.Handler()}
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (e *testEnv) do(t *testing.T, method, path string) (int, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, httptest.NewRequest(method, path, nil))

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func TestNew_RequiresClient(t *testing.T) {
	_, err := New(nil, DefaultConfig())
	assert.Error(t, err)
}

func TestServer_Health(t *testing.T) {
	env := newTestEnv(t, false)

	for _, path := range []string{"/health", "/api/v1/health"} {
		code, body := env.do(t, http.MethodGet, path)
		assert.Equal(t, http.StatusOK, code, path)
		health := decode[map[string]any](t, body.Data)
		assert.Equal(t, "ok", health["status"])
	}
}

func TestServer_Identifiers(t *testing.T) {
	env := newTestEnv(t, false)

	tests := []struct {
		name     string
		path     string
		wantCode int
		want     any
		errCode  string
	}{
		{name: "koi prefix", path: "/api/v1/identifiers/KOI-752", wantCode: 200, want: "K00752.01"},
		{name: "decimal", path: "/api/v1/identifiers/752.02", wantCode: 200, want: "K00752.02"},
		{name: "star number", path: "/api/v1/identifiers/K00752.02?star=true&number=true", wantCode: 200, want: float64(752)},
		{name: "candidate number", path: "/api/v1/identifiers/K00752.02?number=1", wantCode: 200, want: 752.02},
		{name: "garbage", path: "/api/v1/identifiers/bogus", wantCode: 400, errCode: "INVALID_INPUT"},
		{name: "bad flag", path: "/api/v1/identifiers/752?star=maybe", wantCode: 400, errCode: "INVALID_INPUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := env.do(t, http.MethodGet, tt.path)
			assert.Equal(t, tt.wantCode, code)
			if tt.errCode != "" {
				require.NotNil(t, body.Error)
				assert.Equal(t, tt.errCode, body.Error.Code)
				return
			}
			got := decode[map[string]any](t, body.Data)
			assert.Equal(t, tt.want, got["identifier"])
		})
	}
}

func TestServer_Stars(t *testing.T) {
	env := newTestEnv(t, false)

	code, body := env.do(t, http.MethodGet, "/api/v1/stars/752?props=mass,teff")
	require.Equal(t, http.StatusOK, code)
	star := decode[map[string]float64](t, body.Data)
	assert.Equal(t, map[string]float64{"mass": 0.919, "teff": 5455}, star)

	code, body = env.do(t, http.MethodGet, "/api/v1/stars/757099")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[map[string]any](t, body.Data), 11)

	code, body = env.do(t, http.MethodGet, "/api/v1/stars/123")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "UNKNOWN_IDENTIFIER", body.Error.Code)

	code, body = env.do(t, http.MethodGet, "/api/v1/stars/10797460?props=nope")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "PROPERTY_NOT_FOUND", body.Error.Code)
}

func TestServer_RaDecMissingCoordinate(t *testing.T) {
	env := newTestEnv(t, false)
	env.archive.set(constants.CandidateTable, `kepid,kepoi_name,koi_count,ra,dec
10797460,K00752.01,1,,48.141651
`)

	code, body := env.do(t, http.MethodGet, "/api/v1/candidates/752/radec")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"id": "752", "ra": null, "dec": 48.141651}`, string(body.Data))
}

func TestServer_Candidates(t *testing.T) {
	env := newTestEnv(t, false)

	code, body := env.do(t, http.MethodGet, "/api/v1/candidates/752.02?columns=kepoi_name,koi_[gr]mag")
	require.Equal(t, http.StatusOK, code)
	row := decode[map[string]any](t, body.Data)
	assert.Len(t, row, 3)
	assert.Equal(t, "K00752.02", row["kepoi_name"])

	code, body = env.do(t, http.MethodGet, "/api/v1/candidates/752/radec")
	require.Equal(t, http.StatusOK, code)
	pos := decode[map[string]any](t, body.Data)
	assert.InDelta(t, 291.93423, pos["ra"], 1e-9)
	assert.InDelta(t, 48.141651, pos["dec"], 1e-9)

	code, body = env.do(t, http.MethodGet, "/api/v1/candidates/752/magnitudes?bands=J,Ks")
	require.Equal(t, http.StatusOK, code)
	mags := decode[map[string]float64](t, body.Data)
	assert.Contains(t, mags, "J")
	assert.Contains(t, mags, "Ks")

	code, body = env.do(t, http.MethodGet, "/api/v1/candidates/752/magnitudes?bands=X")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "PROPERTY_NOT_FOUND", body.Error.Code)

	code, body = env.do(t, http.MethodGet, "/api/v1/candidates/42.01")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "UNKNOWN_IDENTIFIER", body.Error.Code)

	code, body = env.do(t, http.MethodGet, "/api/v1/candidates/bogus")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "UNKNOWN_IDENTIFIER", body.Error.Code)

	code, body = env.do(t, http.MethodGet, "/api/v1/candidates/752?columns=koi_(")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INVALID_INPUT", body.Error.Code)
}

func TestServer_Distributions(t *testing.T) {
	env := newTestEnv(t, false)

	code, body := env.do(t, http.MethodGet, "/api/v1/distributions/752/mass")
	require.Equal(t, http.StatusOK, code)
	d := decode[map[string]any](t, body.Data)
	assert.InDelta(t, 0.919, d["mu"], 1e-12)
	assert.InDelta(t, 0.046, d["siglo"], 1e-12)
	assert.InDelta(t, 0.052, d["sighi"], 1e-12)

	// Missing error bars fall back to the requested uncertainty.
	code, body = env.do(t, http.MethodGet, "/api/v1/distributions/757099/feh?unc=0.3&absolute=true")
	require.Equal(t, http.StatusOK, code)
	d = decode[map[string]any](t, body.Data)
	assert.InDelta(t, 0.3, d["siglo"], 1e-12)
	assert.InDelta(t, 0.3, d["sighi"], 1e-12)

	code, body = env.do(t, http.MethodGet, "/api/v1/distributions/752/mass?unc=wide")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INVALID_INPUT", body.Error.Code)

	code, _ = env.do(t, http.MethodGet, "/api/v1/distributions/752/luminosity")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestServer_Catalogs(t *testing.T) {
	env := newTestEnv(t, false)

	code, body := env.do(t, http.MethodGet, "/api/v1/catalogs")
	require.Equal(t, http.StatusOK, code)
	list := decode[[]map[string]any](t, body.Data)
	require.Len(t, list, 2)

	code, body = env.do(t, http.MethodPost, "/api/v1/catalogs/cumulative/refresh")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(2), decode[map[string]any](t, body.Data)["rows"])

	code, body = env.do(t, http.MethodGet, "/api/v1/catalogs/cumulative/refresh")
	assert.Equal(t, http.StatusMethodNotAllowed, code)
	assert.Equal(t, "METHOD_NOT_ALLOWED", body.Error.Code)

	code, body = env.do(t, http.MethodPost, "/api/v1/catalogs/nope/refresh")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "UNKNOWN_IDENTIFIER", body.Error.Code)
}

func TestServer_RefreshClearsResponseCache(t *testing.T) {
	env := newTestEnv(t, false)

	_, body := env.do(t, http.MethodGet, "/api/v1/stars/757099?props=teff")
	assert.Equal(t, float64(5519), decode[map[string]float64](t, body.Data)["teff"])

	env.archive.set(constants.StellarTable, strings.Replace(stellarCSV, "757099,5519", "757099,5600", 1))

	// Served from the response cache until the catalog is refreshed.
	_, body = env.do(t, http.MethodGet, "/api/v1/stars/757099?props=teff")
	assert.Equal(t, float64(5519), decode[map[string]float64](t, body.Data)["teff"])

	code, _ := env.do(t, http.MethodPost, "/api/v1/catalogs/"+constants.StellarTable+"/refresh")
	require.Equal(t, http.StatusOK, code)

	_, body = env.do(t, http.MethodGet, "/api/v1/stars/757099?props=teff")
	assert.Equal(t, float64(5600), decode[map[string]float64](t, body.Data)["teff"])
}

func TestServer_ArchiveDown(t *testing.T) {
	env := newTestEnv(t, true)

	code, body := env.do(t, http.MethodGet, "/api/v1/candidates/752")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "CATALOG_UNAVAILABLE", body.Error.Code)

	// Normalization needs no catalog.
	code, _ = env.do(t, http.MethodGet, "/api/v1/identifiers/752")
	assert.Equal(t, http.StatusOK, code)
}

func TestServer_NotFoundAndMetrics(t *testing.T) {
	env := newTestEnv(t, false)

	code, body := env.do(t, http.MethodGet, "/api/v1/planets")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "NOT_FOUND", body.Error.Code)

	env.do(t, http.MethodGet, "/api/v1/candidates/752/radec")

	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "kepmap_http_requests_total")
	assert.Contains(t, w.Body.String(), `route="/api/v1/candidates/{id}/radec"`)
	assert.Contains(t, w.Body.String(), "kepmap_catalog_loads_total")
}
