package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/UnknownOlympus/quizmap/internal/api"
	"github.com/UnknownOlympus/quizmap/internal/metrics"
	"github.com/UnknownOlympus/quizmap/internal/models"
	"github.com/UnknownOlympus/quizmap/internal/repository"
	"github.com/UnknownOlympus/quizmap/internal/service"
	"github.com/UnknownOlympus/quizmap/test/mocks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var home = service.MapView{Center: models.Coordinates{Lat: 38.7926, Lng: 0.1631}, Zoom: service.DefaultZoom}

type env struct {
	srv  *httptest.Server
	fs   afero.Fs
	flow *service.Workflow
}

func newEnv(t *testing.T, locator *mocks.Provider) *env {
	t.Helper()
	logger := slog.Default()
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	fsys := afero.NewMemMapFs()
	repo := repository.NewFileRepositoryWithFs(fsys, "json", logger)

	var flow *service.Workflow
	if locator != nil {
		flow = service.NewWorkflow(logger, repo, locator, m, home)
	} else {
		flow = service.NewWorkflow(logger, repo, nil, m, home)
	}

	hub := api.NewHub(logger, m, flow.View)
	flow.Subscribe(hub.Broadcast)

	srv := httptest.NewServer(api.NewHandler(logger, flow, repo, hub).Routes(reg))
	t.Cleanup(srv.Close)

	return &env{srv: srv, fs: fsys, flow: flow}
}

func (e *env) do(t *testing.T, method, path, body string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}

	req, err := http.NewRequestWithContext(t.Context(), method, e.srv.URL+path, reader)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, data
}

func decodeView(t *testing.T, data []byte) service.View {
	t.Helper()
	var view service.View
	require.NoError(t, json.Unmarshal(data, &view))
	return view
}

func decodeError(t *testing.T, data []byte) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(data, &body))
	return body
}

const markerForm = `{
	"title": "Faro",
	"description": "Lighthouse",
	"questions": [
		{"question": "Q1", "options": ["a","b","c","d"], "correct": 0},
		{"question": "Q2", "options": ["a","b","c","d"], "correct": 1},
		{"question": "Q3", "options": ["a","b","c","d"], "correct": 2},
		{"question": "Q4", "options": ["a","b","c","d"], "correct": 3}
	]
}`

func TestMarkerLifecycle(t *testing.T) {
	e := newEnv(t, nil)

	status, body := e.do(t, http.MethodPost, "/api/markers", markerForm)
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, service.ErrNoLocation.Error(), decodeError(t, body)["error"])

	status, body = e.do(t, http.MethodPost, "/api/location", `{"lat": 38.84071, "lng": 0.10572}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Selected coordinates: Lat: 38.84071, Lng: 0.10572", decodeView(t, body).Status)

	status, body = e.do(t, http.MethodPost, "/api/markers", markerForm)
	require.Equal(t, http.StatusOK, status)
	view := decodeView(t, body)
	require.Len(t, view.Markers, 1)
	assert.Equal(t, "Faro (38.84071, 0.10572)", view.Markers[0].Label)

	status, body = e.do(t, http.MethodPost, "/api/markers/0/edit", "")
	require.Equal(t, http.StatusOK, status)
	view = decodeView(t, body)
	require.NotNil(t, view.Form)
	assert.Equal(t, "Lighthouse", view.Form.Description)
	assert.Equal(t, 3, view.Form.Questions[3].Correct)
	assert.Equal(t, service.EditZoom, view.Map.Zoom)

	status, body = e.do(t, http.MethodPost, "/api/form/reset", "")
	require.Equal(t, http.StatusOK, status)
	assert.Nil(t, decodeView(t, body).Form)

	status, body = e.do(t, http.MethodDelete, "/api/markers/0", "")
	require.Equal(t, http.StatusConflict, status)
	assert.Equal(t, `Are you sure you want to delete "Faro"?`, decodeError(t, body)["prompt"])

	status, body = e.do(t, http.MethodDelete, "/api/markers/0?confirm=true", "")
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, decodeView(t, body).Markers)
}

func TestMarkerIndexErrors(t *testing.T) {
	e := newEnv(t, nil)

	status, _ := e.do(t, http.MethodPost, "/api/markers/abc/edit", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = e.do(t, http.MethodPost, "/api/markers/4/edit", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = e.do(t, http.MethodDelete, "/api/markers/4?confirm=true", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestSelectLocationValidation(t *testing.T) {
	e := newEnv(t, nil)

	status, body := e.do(t, http.MethodPost, "/api/location", `{"lat": 38.8}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, decodeError(t, body)["error"], "lat and lng are required")

	status, _ = e.do(t, http.MethodPost, "/api/location", `not json`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestSaveAndLoad(t *testing.T) {
	e := newEnv(t, nil)
	e.do(t, http.MethodPost, "/api/location", `{"lat": 38.84, "lng": 0.1}`)
	e.do(t, http.MethodPost, "/api/markers", markerForm)

	status, body := e.do(t, http.MethodPost, "/api/save", `{"town": ""}`)
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, service.ErrTownRequired.Error(), decodeError(t, body)["error"])

	status, body = e.do(t, http.MethodPost, "/api/save", `{"town": " Denia "}`)
	require.Equal(t, http.StatusOK, status)
	var saved struct {
		Location string       `json:"location"`
		View     service.View `json:"view"`
	}
	require.NoError(t, json.Unmarshal(body, &saved))
	assert.Equal(t, "json/Denia.json", saved.Location)
	assert.Equal(t, "Denia", saved.View.Town)

	written, err := afero.ReadFile(e.fs, "json/Denia.json")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(written), "{\n  \"town\": \"Denia\""))

	status, body = e.do(t, http.MethodGet, "/api/documents", "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"documents":["Denia.json"]}`, string(body))

	require.NoError(t, afero.WriteFile(e.fs, "json/Javea.json", []byte(`{"town":"Javea","markers":[]}`), 0o644))
	status, body = e.do(t, http.MethodPost, "/api/load", `{"file": "Javea.json"}`)
	require.Equal(t, http.StatusOK, status)
	view := decodeView(t, body)
	assert.Equal(t, "Javea", view.Town)
	assert.Empty(t, view.Markers)

	status, body = e.do(t, http.MethodPost, "/api/load", `{"file": "Denia.json"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, saved.View.Markers, decodeView(t, body).Markers)
}

func TestLoadErrors(t *testing.T) {
	e := newEnv(t, nil)
	require.NoError(t, afero.WriteFile(e.fs, "json/NoMarkers.json", []byte(`{"town":"X"}`), 0o644))
	require.NoError(t, afero.WriteFile(e.fs, "json/Broken.json", []byte(`{"town":`), 0o644))

	tests := []struct {
		name   string
		file   string
		status int
	}{
		{name: "missing document", file: "Missing.json", status: http.StatusNotFound},
		{name: "missing markers", file: "NoMarkers.json", status: http.StatusBadRequest},
		{name: "malformed json", file: "Broken.json", status: http.StatusBadRequest},
		{name: "not a json document", file: "notes.txt", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := e.do(t, http.MethodPost, "/api/load", `{"file": "`+tt.file+`"}`)

			assert.Equal(t, tt.status, status)
			assert.NotEmpty(t, decodeError(t, body)["error"])
		})
	}
}

func TestLocate(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		e := newEnv(t, nil)

		status, _ := e.do(t, http.MethodPost, "/api/locate", `{"query": "Denia"}`)

		assert.Equal(t, http.StatusServiceUnavailable, status)
	})

	t.Run("centres the map", func(t *testing.T) {
		locator := mocks.NewProvider(t)
		e := newEnv(t, locator)
		locator.On("Geocode", mock.Anything, "Denia").Return(&models.Coordinates{Lat: 38.84, Lng: 0.1}, nil).Once()

		status, body := e.do(t, http.MethodPost, "/api/locate", `{"query": "Denia"}`)

		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, models.Coordinates{Lat: 38.84, Lng: 0.1}, decodeView(t, body).Map.Center)
	})
}

func TestHealthz(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		e := newEnv(t, nil)

		status, body := e.do(t, http.MethodGet, "/healthz", "")

		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "OK", string(body))
	})

	t.Run("store unavailable", func(t *testing.T) {
		store := mocks.NewInterface(t)
		store.On("Ping", mock.Anything).Return(assert.AnError).Once()
		handler := api.NewHandler(slog.Default(), nil, store, nil)

		rec := httptest.NewRecorder()
		handler.Routes(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "store ping failed", rec.Body.String())
	})
}

func TestMetricsEndpoint(t *testing.T) {
	e := newEnv(t, nil)
	e.do(t, http.MethodPost, "/api/location", `{"lat": 1, "lng": 2}`)

	status, body := e.do(t, http.MethodGet, "/metrics", "")

	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `quizmap_operations_total{operation="select_location",status="success"} 1`)
}
