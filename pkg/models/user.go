package models

import "time"

// User is a registered account. Password hashes and email addresses never
// leave the server in JSON payloads.
type User struct {
	ID           string `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"not null;uniqueIndex" json:"username"`
	Email        string `gorm:"not null;uniqueIndex" json:"-"`
	PasswordHash string `gorm:"not null" json:"-"`

	JoinedAt         time.Time `gorm:"not null" json:"joinedAt"`
	Bio              string    `json:"bio,omitempty"`
	ProfileImagePath string    `json:"profileImagePath,omitempty"`

	// Deleting a user is restricted while dependent rows exist; see
	// Database.DeleteUser.
	Albums   []Album   `gorm:"foreignKey:UserID" json:"-"`
	Ratings  []Rating  `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT" json:"-"`
	Comments []Comment `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT" json:"-"`
}

// UserStats summarizes a user's activity and the ratings their albums have
// received. It is derived on demand and never persisted.
type UserStats struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`

	AlbumCount          int     `json:"albumCount"`
	AverageAlbumRating  float64 `json:"averageAlbumRating"`
	TotalRatingsGiven   int     `json:"totalRatingsGiven"`
	TotalCommentsPosted int     `json:"totalCommentsPosted"`

	// GenreDistribution counts the user's albums per genre.
	GenreDistribution map[string]int `json:"genreDistribution,omitempty"`
	// RatingDistribution counts the ratings the user has given to others,
	// bucketed by decile (0, 10, ... 100).
	RatingDistribution map[int]int `json:"ratingDistribution,omitempty"`

	LastActivity *time.Time `json:"lastActivity,omitempty"`
}
