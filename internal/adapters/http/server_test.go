package http

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/polyglotter"
	"github.com/aretw0/polyglotter/pkg/adapters/memory"
	"github.com/aretw0/polyglotter/pkg/dsl"
	"github.com/aretw0/polyglotter/pkg/observability"
)

func newEngine(t *testing.T, opts ...polyglotter.Option) (*polyglotter.Engine, *memory.Store) {
	t.Helper()
	store := memory.NewStore(map[string]any{"rate": 5})
	eng := polyglotter.New(append(opts, polyglotter.WithTermSource(store))...)

	b := dsl.New("pricing").Name("Pricing")
	b.Term("price").Value(10)
	b.Term("rate").Key("rate")
	b.Operation("total").Add("price", "rate")
	b.Operation("lonely").Add("price")
	_, err := eng.Build(context.Background(), b.Definition())
	require.NoError(t, err)
	return eng, store
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthAndInfo(t *testing.T) {
	eng, _ := newEngine(t)
	h := NewHandler(eng)

	w := get(t, h, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = get(t, h, "/info")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), polyglotter.Version)
}

func TestListTransforms(t *testing.T) {
	eng, _ := newEngine(t)
	w := get(t, NewHandler(eng), "/transforms")

	require.Equal(t, http.StatusOK, w.Code)
	var got []TransformSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "pricing", got[0].ID.Local)
	assert.Equal(t, "Pricing", got[0].Name)
	assert.Equal(t, 2, got[0].Operations)
	assert.False(t, got[0].Valid)
}

func TestGetTransform(t *testing.T) {
	eng, _ := newEngine(t)
	h := NewHandler(eng)

	for _, path := range []string{"/transforms/pricing", "/transforms/poly:pricing"} {
		w := get(t, h, path)
		require.Equal(t, http.StatusOK, w.Code, path)

		var body struct {
			TransformID string `json:"transform_id"`
			Operations  []struct {
				ID       string `json:"id"`
				State    string `json:"state"`
				HasValue bool   `json:"has_value"`
				Value    any    `json:"value"`
			} `json:"operations"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "poly:pricing", body.TransformID)
		require.Len(t, body.Operations, 2)
		assert.Equal(t, "poly:total", body.Operations[0].ID)
		assert.Equal(t, "VALID", body.Operations[0].State)
		assert.Equal(t, float64(15), body.Operations[0].Value)
		assert.Equal(t, "INVALID", body.Operations[1].State)
		assert.False(t, body.Operations[1].HasValue)
	}

	assert.Equal(t, http.StatusNotFound, get(t, h, "/transforms/missing").Code)
	assert.Equal(t, http.StatusNotFound, get(t, h, "/transforms/"+url.PathEscape("{urn:x}pricing")).Code)
}

func TestGetOperation(t *testing.T) {
	eng, _ := newEngine(t)
	h := NewHandler(eng)

	w := get(t, h, "/transforms/pricing/operations/lonely")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "invalid term count: 1")

	assert.Equal(t, http.StatusNotFound, get(t, h, "/transforms/pricing/operations/nope").Code)
	assert.Equal(t, http.StatusNotFound, get(t, h, "/transforms/nope/operations/total").Code)
}

func TestGetGraph(t *testing.T) {
	eng, _ := newEngine(t)
	w := get(t, NewHandler(eng), "/transforms/pricing/graph")

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "graph LR"))
	assert.Contains(t, w.Body.String(), "poly_price --> poly_total")
}

func TestRefresh(t *testing.T) {
	eng, store := newEngine(t)
	h := NewHandler(eng)

	require.NoError(t, store.Put(context.Background(), "rate", 20))

	req := httptest.NewRequest(http.MethodPost, "/refresh", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"changed":1}`, w.Body.String())

	w = get(t, h, "/transforms/pricing/operations/total")
	assert.Contains(t, w.Body.String(), `"value":30`)
}

func TestGetTransform_NonFiniteValue(t *testing.T) {
	eng, store := newEngine(t)
	h := NewHandler(eng)

	require.NoError(t, store.Put(context.Background(), "rate", math.Inf(1)))
	_, err := eng.Refresh(context.Background())
	require.NoError(t, err)

	w := get(t, h, "/transforms/pricing")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"value":"+Inf"`)
}

func TestWriteJSON_EncodeFailure(t *testing.T) {
	eng, _ := newEngine(t)
	s := &Server{Engine: eng, logger: slog.New(slog.NewJSONHandler(io.Discard, nil))}

	w := httptest.NewRecorder()
	s.writeJSON(w, http.StatusOK, map[string]any{"bad": make(chan int)})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(reg)
	require.NoError(t, err)
	eng, _ := newEngine(t, polyglotter.WithMetrics(metrics))
	h := NewHandler(eng, WithGatherer(reg))

	get(t, h, "/transforms/pricing")
	w := get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "polyglotter_validations_total")

	assert.Equal(t, http.StatusNotFound, get(t, NewHandler(eng), "/metrics").Code)
}

func TestSubscribeEvents(t *testing.T) {
	eng, store := newEngine(t)
	srv := httptest.NewServer(NewHandler(eng))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	lines := bufio.NewScanner(resp.Body)
	require.True(t, lines.Scan())
	assert.Equal(t, "event: ping", lines.Text())

	require.NoError(t, store.Put(ctx, "rate", 7))

	var got []string
	for lines.Scan() {
		got = append(got, lines.Text())
		if strings.HasPrefix(lines.Text(), "data: {") {
			break
		}
	}
	assert.Contains(t, got, "event: refresh")
	assert.Contains(t, got, `data: {"changed":1}`)
}

func TestSubscribeEvents_NotWatchable(t *testing.T) {
	eng := polyglotter.New()
	w := get(t, NewHandler(eng), "/events")
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}
