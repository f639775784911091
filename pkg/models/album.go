package models

import (
	"fmt"
	"time"
)

// Unrated is the sentinel average for albums that have no ratings yet. It
// sits outside the valid [0,100] rating domain so it can never collide with
// a legitimately low average.
const Unrated float64 = -1

// Album represents a user-submitted album listing with metadata, external
// links and an optional cover image stored as raw bytes.
type Album struct {
	ID string `gorm:"primaryKey" json:"id"`

	// Owner identity. UserName is denormalized so album lists render
	// without a join against users on every read.
	UserID   string `gorm:"not null;index" json:"userId"`
	UserName string `gorm:"not null" json:"userName"`

	Title  string `gorm:"not null" json:"title"`
	Artist string `gorm:"not null" json:"artist"`
	Genre  string `gorm:"not null;index" json:"genre"`
	Year   *int   `json:"year,omitempty"`

	Description string `gorm:"not null" json:"description"`

	// Cover image bytes are stored opaquely and served by a dedicated
	// endpoint, never embedded in JSON payloads.
	Image            []byte `json:"-"`
	ImageContentType string `json:"imageContentType,omitempty"`

	Links    []AlbumLink `gorm:"foreignKey:AlbumID;constraint:OnDelete:CASCADE" json:"links"`
	Ratings  []Rating    `gorm:"foreignKey:AlbumID;constraint:OnDelete:CASCADE" json:"ratings"`
	Comments []Comment   `gorm:"foreignKey:AlbumID;constraint:OnDelete:CASCADE" json:"comments"`

	Owner *User `gorm:"foreignKey:UserID" json:"owner,omitempty"`

	UploadedAt time.Time `gorm:"not null;index" json:"uploadedAt"`
}

// AlbumLink is one external link on an album. Position preserves the order
// the uploader entered the links in.
type AlbumLink struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"-"`
	AlbumID  string `gorm:"not null;index" json:"-"`
	URL      string `gorm:"not null" json:"url"`
	Position int    `gorm:"not null" json:"-"`
}

// AverageRating returns the arithmetic mean of all rating values, or the
// Unrated sentinel when the album has no ratings.
func (a *Album) AverageRating() float64 {
	if len(a.Ratings) == 0 {
		return Unrated
	}
	sum := 0
	for _, r := range a.Ratings {
		sum += r.Value
	}
	return float64(sum) / float64(len(a.Ratings))
}

// Rated reports whether the album has at least one rating.
func (a *Album) Rated() bool {
	return len(a.Ratings) > 0
}

// DisplayRating formats the average to one decimal place, or "Not rated"
// for albums without ratings.
func (a *Album) DisplayRating() string {
	avg := a.AverageRating()
	if avg < 0 {
		return "Not rated"
	}
	return fmt.Sprintf("%.1f", avg)
}

// HasImage reports whether a cover image is stored for the album.
func (a *Album) HasImage() bool {
	return len(a.Image) > 0
}
