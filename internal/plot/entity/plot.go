package entity

import "time"

// Plot is a user-owned geolocated land parcel. The geographic point is
// stored as a PostGIS geometry and projected back as lat/long columns.
type Plot struct {
	ID        int64     `db:"plot_id" json:"plot_id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Name      string    `db:"plot_name" json:"plot_name"`
	Location  string    `db:"location" json:"location"`
	Area      float64   `db:"area" json:"area"`
	Lat       float64   `db:"lat" json:"lat"`
	Long      float64   `db:"long" json:"long"`
	IsDeleted bool      `db:"is_deleted" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Coords is the projection returned by the latest-plot-location query.
type Coords struct {
	PlotID   int64   `db:"plot_id" json:"plot_id"`
	UserID   int64   `db:"user_id" json:"user_id"`
	PlotName string  `db:"plot_name" json:"plot_name"`
	Location string  `db:"location" json:"location"`
	Lat      float64 `db:"lat" json:"lat"`
	Long     float64 `db:"long" json:"long"`
	Area     float64 `db:"area" json:"area"`
}

// Input is the request payload for plot create and update. Explicit Lat and
// Long take precedence over coordinates embedded in the location string.
type Input struct {
	Name     string   `json:"plot_name"`
	Location string   `json:"location"`
	Area     float64  `json:"area"`
	Lat      *float64 `json:"lat,omitempty"`
	Long     *float64 `json:"long,omitempty"`
}
