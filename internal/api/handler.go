package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/UnknownOlympus/quizmap/internal/geocoding"
	"github.com/UnknownOlympus/quizmap/internal/models"
	"github.com/UnknownOlympus/quizmap/internal/repository"
	"github.com/UnknownOlympus/quizmap/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxBodyBytes = 1 << 20

// Editor is the marker workflow served over HTTP.
type Editor interface {
	View() service.View
	SelectLocation(lat, lng float64) service.View
	SubmitForm(fields service.FormFields) (service.View, error)
	EditMarker(index int) (service.View, error)
	DeleteMarker(index int, confirm service.Confirmer) (service.View, error)
	CancelEdit() service.View
	Save(ctx context.Context, town string) (string, error)
	ListDocuments(ctx context.Context) ([]string, error)
	Load(ctx context.Context, name string) (service.View, error)
	Locate(ctx context.Context, query string) (service.View, error)
}

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler exposes the editor operations as a JSON API.
type Handler struct {
	log    *slog.Logger
	editor Editor
	store  Pinger
	hub    *Hub
}

type locationRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

type saveRequest struct {
	Town string `json:"town"`
}

type saveResponse struct {
	Location string       `json:"location"`
	View     service.View `json:"view"`
}

type loadRequest struct {
	File string `json:"file"`
}

type locateRequest struct {
	Query string `json:"query"`
}

type documentsResponse struct {
	Documents []string `json:"documents"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Prompt string `json:"prompt,omitempty"`
}

var errBadRequest = errors.New("bad request")

// NewHandler creates a Handler. hub may be nil, in which case no view stream is served.
func NewHandler(log *slog.Logger, editor Editor, store Pinger, hub *Hub) *Handler {
	return &Handler{log: log, editor: editor, store: store, hub: hub}
}

// Routes returns the HTTP routes of the API, the view stream, the health check and the
// metrics endpoint for reg.
func (h *Handler) Routes(reg *prometheus.Registry) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/view", h.getView)
	mux.HandleFunc("POST /api/location", h.selectLocation)
	mux.HandleFunc("POST /api/markers", h.submitForm)
	mux.HandleFunc("POST /api/markers/{index}/edit", h.editMarker)
	mux.HandleFunc("DELETE /api/markers/{index}", h.deleteMarker)
	mux.HandleFunc("POST /api/form/reset", h.cancelEdit)
	mux.HandleFunc("POST /api/save", h.save)
	mux.HandleFunc("GET /api/documents", h.listDocuments)
	mux.HandleFunc("POST /api/load", h.load)
	mux.HandleFunc("POST /api/locate", h.locate)
	mux.HandleFunc("GET /healthz", h.healthz)

	if h.hub != nil {
		mux.HandleFunc("GET /ws", h.hub.ServeWS)
	}
	if reg != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}

	return mux
}

func (h *Handler) getView(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(r.Context(), w, http.StatusOK, h.editor.View())
}

func (h *Handler) selectLocation(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Lat == nil || req.Lng == nil {
		h.writeError(r.Context(), w, fmt.Errorf("%w: lat and lng are required", errBadRequest), "")
		return
	}

	h.writeJSON(r.Context(), w, http.StatusOK, h.editor.SelectLocation(*req.Lat, *req.Lng))
}

func (h *Handler) submitForm(w http.ResponseWriter, r *http.Request) {
	var fields service.FormFields
	if !h.decode(w, r, &fields) {
		return
	}

	view, err := h.editor.SubmitForm(fields)
	h.respond(r.Context(), w, view, err, "")
}

func (h *Handler) editMarker(w http.ResponseWriter, r *http.Request) {
	index, ok := h.index(w, r)
	if !ok {
		return
	}

	view, err := h.editor.EditMarker(index)
	h.respond(r.Context(), w, view, err, "")
}

// deleteMarker only deletes when the request carries confirm=true. Otherwise it
// answers 409 with the prompt the client should show before retrying.
func (h *Handler) deleteMarker(w http.ResponseWriter, r *http.Request) {
	index, ok := h.index(w, r)
	if !ok {
		return
	}

	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))

	var prompt string
	view, err := h.editor.DeleteMarker(index, service.ConfirmFunc(func(p string) bool {
		prompt = p
		return confirmed
	}))
	h.respond(r.Context(), w, view, err, prompt)
}

func (h *Handler) cancelEdit(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(r.Context(), w, http.StatusOK, h.editor.CancelEdit())
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if !h.decode(w, r, &req) {
		return
	}

	location, err := h.editor.Save(r.Context(), req.Town)
	if err != nil {
		h.writeError(r.Context(), w, err, "")
		return
	}

	h.writeJSON(r.Context(), w, http.StatusOK, saveResponse{Location: location, View: h.editor.View()})
}

func (h *Handler) listDocuments(w http.ResponseWriter, r *http.Request) {
	names, err := h.editor.ListDocuments(r.Context())
	if err != nil {
		h.writeError(r.Context(), w, err, "")
		return
	}

	h.writeJSON(r.Context(), w, http.StatusOK, documentsResponse{Documents: names})
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) {
	var req loadRequest
	if !h.decode(w, r, &req) {
		return
	}

	view, err := h.editor.Load(r.Context(), req.File)
	h.respond(r.Context(), w, view, err, "")
}

func (h *Handler) locate(w http.ResponseWriter, r *http.Request) {
	var req locateRequest
	if !h.decode(w, r, &req) {
		return
	}

	view, err := h.editor.Locate(r.Context(), req.Query)
	h.respond(r.Context(), w, view, err, "")
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.log.DebugContext(ctx, "Performing health checks...")

	status, body := http.StatusOK, "OK"
	if err := h.store.Ping(ctx); err != nil {
		h.log.WarnContext(ctx, "Store ping failed", "error", err)
		status, body = http.StatusServiceUnavailable, "store ping failed"
	}

	w.WriteHeader(status)
	if _, err := w.Write([]byte(body)); err != nil {
		h.log.ErrorContext(ctx, "failed to write reply", "error", err)
	}
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		h.writeError(r.Context(), w, fmt.Errorf("%w: marker index must be an integer", errBadRequest), "")
		return 0, false
	}

	return index, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		h.writeError(r.Context(), w, fmt.Errorf("%w: %w", errBadRequest, err), "")
		return false
	}

	return true
}

func (h *Handler) respond(ctx context.Context, w http.ResponseWriter, view service.View, err error, prompt string) {
	if err != nil {
		h.writeError(ctx, w, err, prompt)
		return
	}

	h.writeJSON(ctx, w, http.StatusOK, view)
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, err error, prompt string) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.ErrorContext(ctx, "Request failed", "error", err)
	} else {
		h.log.DebugContext(ctx, "Request rejected", "status", status, "error", err)
	}

	resp := errorResponse{Error: err.Error()}
	if status == http.StatusConflict {
		resp.Prompt = prompt
	}
	h.writeJSON(ctx, w, status, resp)
}

func (h *Handler) writeJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.ErrorContext(ctx, "failed to write reply", "error", err)
	}
}

// statusFor maps workflow errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, service.ErrNoLocation),
		errors.Is(err, service.ErrTownRequired),
		errors.Is(err, models.ErrInvalidJSON),
		errors.Is(err, models.ErrInvalidFormat),
		errors.Is(err, repository.ErrInvalidName):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrMarkerNotFound),
		errors.Is(err, repository.ErrNotFound),
		errors.Is(err, geocoding.ErrEmptyResponse),
		errors.Is(err, geocoding.ErrNominatimEmptyResponse):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNotConfirmed):
		return http.StatusConflict
	case errors.Is(err, service.ErrLocatorDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
