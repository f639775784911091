package models

import "time"

// Rating is a 0-100 score a user assigns to an album. The composite unique
// index guarantees at most one rating per (album, user) pair; re-rating
// updates the existing row instead of inserting a duplicate.
type Rating struct {
	ID       string `gorm:"primaryKey" json:"id"`
	AlbumID  string `gorm:"not null;uniqueIndex:idx_ratings_album_user" json:"albumId"`
	UserID   string `gorm:"not null;uniqueIndex:idx_ratings_album_user" json:"userId"`
	UserName string `gorm:"not null" json:"userName"`

	Value  int    `gorm:"not null" json:"value"`
	Review string `json:"review,omitempty"`

	RatedAt time.Time `gorm:"not null" json:"ratedAt"`
}
