package geocoding

import (
	"context"

	"github.com/UnknownOlympus/quizmap/internal/models"
)

// Provider is an interface that defines a method for locating a place.
// The Geocode method takes a context and a free-form query (usually a town name)
// and returns the coordinates the map should be centred on.
type Provider interface {
	Geocode(ctx context.Context, query string) (*models.Coordinates, error)
}
