package models

// LocationSource names the resolver tier that produced a result.
type LocationSource string

const (
	SourceCache      LocationSource = "cache"
	SourceCorrection LocationSource = "correction"
	SourceGazetteer  LocationSource = "gazetteer"
	SourceAPI        LocationSource = "api"
)

// LocationResult is a resolved location. Never mutated after creation.
type LocationResult struct {
	Latitude  float64
	Longitude float64
	Address   string
	Source    LocationSource
}
