package types

import (
	"strings"
	"time"
)

// DefaultSeason is used when a place is submitted without a season.
const DefaultSeason = "All"

// Place is a point of interest submitted by users or loaded from the collections API.
type Place struct {
	ID          string    `json:"id,omitempty"`
	Name        string    `json:"name" validate:"required"`
	District    string    `json:"district" validate:"required"`
	Category    string    `json:"category" validate:"required"`
	Season      string    `json:"season" validate:"required"`
	Description string    `json:"description" validate:"required"`
	Latitude    *float64  `json:"lat,omitempty" validate:"omitempty,latitude"`
	Longitude   *float64  `json:"lon,omitempty" validate:"omitempty,longitude"`
	ImageURL    string    `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitzero"`
}

// PlaceID derives the storage identifier from the place name when none was supplied.
func PlaceID(p Place) string {
	if p.ID != "" {
		return p.ID
	}
	return strings.ReplaceAll(strings.ToLower(p.Name), " ", "-")
}

// PlaceFromRecord builds a Place out of a submission or API record.
func PlaceFromRecord(record map[string]any) Place {
	p := Place{
		ID:          stringField(record, "id"),
		Name:        stringField(record, "name"),
		District:    stringField(record, "district"),
		Category:    stringField(record, "category"),
		Season:      stringField(record, "season"),
		Description: stringField(record, "description"),
		ImageURL:    stringField(record, "image_url"),
		CreatedAt:   timeField(record, "created_at"),
	}
	if p.Season == "" {
		p.Season = DefaultSeason
	}
	if lat, ok := FloatField(record, "lat"); ok {
		p.Latitude = &lat
	}
	if lon, ok := FloatField(record, "lon"); ok {
		p.Longitude = &lon
	}
	return p
}

// ImageUploadRequest carries an image as base64 or a data URL.
type ImageUploadRequest struct {
	Image string `json:"image"`
}

// ImageInfo describes an accepted image upload.
type ImageInfo struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
	Bytes  int    `json:"bytes"`
}
