package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/UnknownOlympus/quizmap/internal/geocoding"
	"github.com/UnknownOlympus/quizmap/internal/metrics"
	"github.com/UnknownOlympus/quizmap/internal/models"
	"github.com/UnknownOlympus/quizmap/internal/repository"
	"github.com/samber/lo"
)

// Confirmer asks the user to confirm a destructive action.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a plain function to Confirmer.
type ConfirmFunc func(prompt string) bool

// Confirm calls f(prompt).
func (f ConfirmFunc) Confirm(prompt string) bool {
	return f(prompt)
}

// Workflow owns the marker collection being edited and keeps the map, the
// side list and the form consistent with it. All operations are serialized;
// document and geocoding I/O run outside the state lock.
type Workflow struct {
	log     *slog.Logger         // Logger for logging workflow activities
	repo    repository.Interface // Store for collection documents
	locator geocoding.Provider   // Town locator, nil when disabled
	metrics *metrics.Metrics     // Metrics for tracking editor activity

	mu          sync.Mutex
	state       State
	subscribers map[int]func(View)
	nextSubID   int
}

// NewWorkflow creates an idle Workflow with an empty collection and the map at home.
// locator may be nil, in which case Locate reports ErrLocatorDisabled.
func NewWorkflow(
	log *slog.Logger,
	repo repository.Interface,
	locator geocoding.Provider,
	metrics *metrics.Metrics,
	home MapView,
) *Workflow {
	return &Workflow{
		log:         log,
		repo:        repo,
		locator:     locator,
		metrics:     metrics,
		state:       State{Markers: []models.Marker{}, Map: home},
		subscribers: make(map[int]func(View)),
	}
}

// View returns the current view.
func (w *Workflow) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()

	return Render(w.state)
}

// Subscribe registers fn to receive the rendered view after every change.
// fn is called with the workflow locked, so it must not block or call back into the Workflow.
// The returned function removes the subscription.
func (w *Workflow) Subscribe(fn func(View)) func() {
	w.mu.Lock()
	defer w.mu.Unlock()

	id := w.nextSubID
	w.nextSubID++
	w.subscribers[id] = fn

	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		delete(w.subscribers, id)
	}
}

// SelectLocation records a pending coordinate, replacing any prior selection.
// While a marker is being edited the selection becomes its new position.
func (w *Workflow) SelectLocation(lat, lng float64) View {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.state.Pending = &models.Coordinates{Lat: lat, Lng: lng}
	w.observe("select_location", nil)

	return w.publish()
}

// SubmitForm stores the form as a marker at the pending coordinate. It replaces the
// marker being edited or appends a new one, then returns the editor to idle.
func (w *Workflow) SubmitForm(fields FormFields) (View, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state.Pending == nil {
		w.observe("submit", ErrNoLocation)
		return Render(w.state), ErrNoLocation
	}

	marker := models.Marker{
		Title:       fields.Title,
		Description: fields.Description,
		Coordinates: *w.state.Pending,
		Questions:   fields.Questions,
	}

	if idx := w.state.EditIndex; idx != nil && *idx < len(w.state.Markers) {
		w.state.Markers[*idx] = marker
		w.log.Debug("Marker replaced", "index", *idx, "title", marker.Title)
	} else {
		w.state.Markers = append(w.state.Markers, marker)
		w.log.Debug("Marker added", "index", len(w.state.Markers)-1, "title", marker.Title)
	}

	w.resetForm()
	w.observe("submit", nil)

	return w.publish(), nil
}

// DeleteMarker removes the marker at index once confirm agrees. Later markers shift down by one.
// Unless another marker stays in edit, the pending selection is cleared.
func (w *Workflow) DeleteMarker(index int, confirm Confirmer) (View, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if index < 0 || index >= len(w.state.Markers) {
		w.observe("delete", ErrMarkerNotFound)
		return Render(w.state), fmt.Errorf("%w: index %d", ErrMarkerNotFound, index)
	}

	prompt := fmt.Sprintf("Are you sure you want to delete %q?", w.state.Markers[index].Title)
	if confirm == nil || !confirm.Confirm(prompt) {
		w.observe("delete", ErrNotConfirmed)
		return Render(w.state), ErrNotConfirmed
	}

	w.state.Markers = slices.Delete(w.state.Markers, index, index+1)

	// Outside editing the list re-render drops the pending selection.
	if idx := w.state.EditIndex; idx == nil || *idx == index {
		w.resetForm()
	} else if *idx > index {
		w.state.EditIndex = lo.ToPtr(*idx - 1)
	}

	w.log.Debug("Marker deleted", "index", index, "remaining", len(w.state.Markers))
	w.observe("delete", nil)

	return w.publish(), nil
}

// EditMarker opens the marker at index in the form, makes its position the pending
// selection and centres the map on it.
func (w *Workflow) EditMarker(index int) (View, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if index < 0 || index >= len(w.state.Markers) {
		w.observe("edit", ErrMarkerNotFound)
		return Render(w.state), fmt.Errorf("%w: index %d", ErrMarkerNotFound, index)
	}

	coords := w.state.Markers[index].Coordinates
	w.state.EditIndex = lo.ToPtr(index)
	w.state.Pending = lo.ToPtr(coords)
	w.state.Map = MapView{Center: coords, Zoom: EditZoom}
	w.observe("edit", nil)

	return w.publish(), nil
}

// CancelEdit clears the form: no marker is edited and no location is pending.
func (w *Workflow) CancelEdit() View {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.resetForm()
	w.observe("cancel_edit", nil)

	return w.publish()
}

// Save writes the collection as "<town>.json" and returns where it was stored.
// The name is trimmed and must not be empty.
func (w *Workflow) Save(ctx context.Context, town string) (string, error) {
	town = strings.TrimSpace(town)
	if town == "" {
		w.observe("save", ErrTownRequired)
		return "", ErrTownRequired
	}

	w.mu.Lock()
	collection := models.Collection{Town: town, Markers: slices.Clone(w.state.Markers)}
	w.mu.Unlock()

	data, err := models.EncodeCollection(collection)
	if err != nil {
		w.observe("save", err)
		return "", err
	}

	start := time.Now()
	location, err := w.repo.Put(ctx, repository.DocumentName(town), data)
	w.metrics.StorageSeconds.WithLabelValues("put").Observe(time.Since(start).Seconds())
	if err != nil {
		w.log.ErrorContext(ctx, "Failed to save collection", "town", town, "error", err)
		w.observe("save", err)
		return "", fmt.Errorf("failed to save %q: %w", town, err)
	}

	w.log.InfoContext(ctx, "Collection saved", "town", town, "markers", len(collection.Markers), "location", location)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.state.Town = town
	w.observe("save", nil)
	w.publish()

	return location, nil
}

// Load replaces the collection with the named document. The document must carry a
// town and a markers array; on any failure the current collection is left untouched.
func (w *Workflow) Load(ctx context.Context, name string) (View, error) {
	start := time.Now()
	data, err := w.repo.Get(ctx, name)
	w.metrics.StorageSeconds.WithLabelValues("get").Observe(time.Since(start).Seconds())
	if err != nil {
		w.log.WarnContext(ctx, "Failed to read collection", "name", name, "error", err)
		w.observe("load", err)
		return w.View(), fmt.Errorf("failed to read %q: %w", name, err)
	}

	collection, err := models.DecodeCollection(data)
	if err != nil {
		w.log.WarnContext(ctx, "Rejected collection document", "name", name, "error", err)
		w.observe("load", err)
		return w.View(), fmt.Errorf("failed to load %q: %w", name, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.state.Town = collection.Town
	w.state.Markers = collection.Markers
	w.resetForm()
	w.log.InfoContext(ctx, "Collection loaded", "town", collection.Town, "markers", len(collection.Markers))
	w.observe("load", nil)

	return w.publish(), nil
}

// ListDocuments returns the names of the stored collection documents.
func (w *Workflow) ListDocuments(ctx context.Context) ([]string, error) {
	start := time.Now()
	names, err := w.repo.List(ctx)
	w.metrics.StorageSeconds.WithLabelValues("list").Observe(time.Since(start).Seconds())
	w.observe("list", err)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	return names, nil
}

// Locate centres the map on the place the query geocodes to.
func (w *Workflow) Locate(ctx context.Context, query string) (View, error) {
	query = strings.TrimSpace(query)

	switch {
	case w.locator == nil:
		w.observe("locate", ErrLocatorDisabled)
		return w.View(), ErrLocatorDisabled
	case query == "":
		w.observe("locate", ErrTownRequired)
		return w.View(), ErrTownRequired
	}

	start := time.Now()
	coords, err := w.locator.Geocode(ctx, query)
	w.metrics.LocateSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		w.log.WarnContext(ctx, "Failed to locate town", "query", query, "error", err)
		w.observe("locate", err)
		return w.View(), fmt.Errorf("failed to locate %q: %w", query, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.state.Map = MapView{Center: *coords, Zoom: DefaultZoom}
	w.observe("locate", nil)

	return w.publish(), nil
}

// resetForm returns the editor to idle. Callers hold w.mu.
func (w *Workflow) resetForm() {
	w.state.EditIndex = nil
	w.state.Pending = nil
}

// publish renders the state and hands the view to every subscriber. Callers hold w.mu.
func (w *Workflow) publish() View {
	w.state.Revision++
	view := Render(w.state)
	w.metrics.Markers.Set(float64(len(w.state.Markers)))

	for _, fn := range w.subscribers {
		fn(view)
	}

	return view
}

// observe counts an operation outcome.
func (w *Workflow) observe(operation string, err error) {
	status := "success"
	switch {
	case errors.Is(err, ErrNotConfirmed):
		status = "cancelled"
	case err != nil:
		status = "failure"
	}

	w.metrics.Operations.WithLabelValues(operation, status).Inc()
}
