package domain

import "time"

// Region groups dzongkhags.
type Region string

const (
	RegionWestern  Region = "western"
	RegionCentral  Region = "central"
	RegionEastern  Region = "eastern"
	RegionSouthern Region = "southern"
)

// Valid reports whether r is a known region.
func (r Region) Valid() bool {
	switch r {
	case RegionWestern, RegionCentral, RegionEastern, RegionSouthern:
		return true
	}
	return false
}

// Coordinates is a WGS84 point.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Dzongkhag is a top-level administrative district.
type Dzongkhag struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	NameInDzongkha string       `json:"nameInDzongkha,omitempty"`
	Code           string       `json:"code"`
	Region         Region       `json:"region"`
	Area           float64      `json:"area,omitempty"`
	Population     int64        `json:"population,omitempty"`
	Coordinates    *Coordinates `json:"coordinates,omitempty"`
	CreatedBy      string       `json:"createdBy,omitempty"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

// DzongkhagPatch carries a partial dzongkhag update.
type DzongkhagPatch struct {
	Name           *string
	NameInDzongkha *string
	Code           *string
	Region         *Region
	Area           *float64
	Population     *int64
	Coordinates    *Coordinates
}

// Gewog is a sub-district belonging to one dzongkhag.
type Gewog struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	NameInDzongkha string       `json:"nameInDzongkha,omitempty"`
	DzongkhagID    string       `json:"dzongkhagId"`
	Dzongkhag      *Dzongkhag   `json:"dzongkhag,omitempty"`
	Area           float64      `json:"area,omitempty"`
	Population     int64        `json:"population,omitempty"`
	Coordinates    *Coordinates `json:"coordinates,omitempty"`
	CreatedBy      string       `json:"createdBy,omitempty"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

// GewogPatch carries a partial gewog update.
type GewogPatch struct {
	Name           *string
	NameInDzongkha *string
	DzongkhagID    *string
	Area           *float64
	Population     *int64
	Coordinates    *Coordinates
}
