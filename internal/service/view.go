package service

import (
	"fmt"

	"github.com/UnknownOlympus/quizmap/internal/models"
	"github.com/samber/lo"
)

const (
	// DefaultZoom is the zoom level of the home view and of a located town.
	DefaultZoom = 14
	// EditZoom is the zoom level used when a marker is opened for editing.
	EditZoom = 15

	idleStatus = "Click on the map to select a location."
)

// FormFields are the editable fields of a marker. Coordinates come from the pending selection instead.
type FormFields struct {
	Title       string                                     `json:"title"`
	Description string                                     `json:"description"`
	Questions   [models.QuestionsPerMarker]models.Question `json:"questions"`
}

// MapView is the centre and zoom level of the map.
type MapView struct {
	Center models.Coordinates `json:"center"`
	Zoom   int                `json:"zoom"`
}

// State is the complete editor state a View is rendered from.
type State struct {
	Revision  uint64 // incremented on every published change
	Town      string
	Markers   []models.Marker
	Pending   *models.Coordinates // location selected but not yet committed
	EditIndex *int                // marker the form currently edits; nil when idle
	Map       MapView
}

// MarkerView is one entry of the side list and one pin on the map.
type MarkerView struct {
	Index   int     `json:"index"`
	Title   string  `json:"title"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Label   string  `json:"label"`
	Editing bool    `json:"editing"`
}

// View is the declarative description of everything the front-end displays.
type View struct {
	Revision  uint64              `json:"revision"`
	Town      string              `json:"town"`
	Map       MapView             `json:"map"`
	Pending   *models.Coordinates `json:"pending,omitempty"`
	EditIndex *int                `json:"editIndex,omitempty"`
	Markers   []MarkerView        `json:"markers"`
	Status    string              `json:"status"`
	Form      *FormFields         `json:"form,omitempty"`
}

// Render builds the view of a state. It does not retain any part of the state.
func Render(s State) View {
	view := View{
		Revision: s.Revision,
		Town:     s.Town,
		Map:      s.Map,
		Markers: lo.Map(s.Markers, func(m models.Marker, i int) MarkerView {
			return MarkerView{
				Index:   i,
				Title:   m.Title,
				Lat:     m.Coordinates.Lat,
				Lng:     m.Coordinates.Lng,
				Label:   fmt.Sprintf("%s (%.5f, %.5f)", m.Title, m.Coordinates.Lat, m.Coordinates.Lng),
				Editing: s.EditIndex != nil && *s.EditIndex == i,
			}
		}),
		Status: idleStatus,
	}

	if s.Pending != nil {
		view.Pending = lo.ToPtr(*s.Pending)
		view.Status = fmt.Sprintf("Selected coordinates: Lat: %.5f, Lng: %.5f", s.Pending.Lat, s.Pending.Lng)
	}

	if s.EditIndex != nil && *s.EditIndex >= 0 && *s.EditIndex < len(s.Markers) {
		view.EditIndex = lo.ToPtr(*s.EditIndex)
		view.Form = lo.ToPtr(formFrom(s.Markers[*s.EditIndex]))
	}

	return view
}

func formFrom(m models.Marker) FormFields {
	return FormFields{Title: m.Title, Description: m.Description, Questions: m.Questions}
}
