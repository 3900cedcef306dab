package models

// Coordinates represents a geographical point defined by its latitude and longitude.
type Coordinates struct {
	Lat float64 `json:"lat"` // Latitude of the geographical point.
	Lng float64 `json:"lng"` // Longitude of the geographical point.
}
