package database

import (
	"fmt"
	"time"

	"crescendo/pkg/models"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

// AddOrUpdateRating records a user's rating of an album, updating the value,
// review and timestamp if the user has rated it before. The write is an
// atomic upsert on the (album_id, user_id) unique index, so a concurrent
// duplicate submission resolves to the update path instead of surfacing a
// constraint error. Returns false when the album id is unknown.
//
// The value is assumed to be validated at the caller boundary; this layer
// does not re-check the [0,100] range.
func (db *Database) AddOrUpdateRating(albumID, userID, userName string, value int, review string) (bool, error) {
	var count int64
	if err := db.conn.Model(&models.Album{}).
		Where("id = ?", albumID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to look up album '%s': %w", albumID, err)
	}
	if count == 0 {
		return false, nil
	}

	rating := models.Rating{
		ID:       uuid.NewString(),
		AlbumID:  albumID,
		UserID:   userID,
		UserName: userName,
		Value:    value,
		Review:   review,
		RatedAt:  time.Now(),
	}

	if err := db.conn.
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "album_id"}, {Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"value":     rating.Value,
				"review":    rating.Review,
				"user_name": rating.UserName,
				"rated_at":  rating.RatedAt,
			}),
		}).
		Create(&rating).Error; err != nil {
		return false, fmt.Errorf("failed to save rating for album '%s': %w", albumID, err)
	}
	return true, nil
}

// DeleteRating removes a user's rating of an album. Returns false if no such
// rating exists.
func (db *Database) DeleteRating(albumID, userID string) (bool, error) {
	result := db.conn.
		Where("album_id = ? AND user_id = ?", albumID, userID).
		Delete(&models.Rating{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete rating for album '%s': %w", albumID, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// RatingsByUser returns all ratings a user has given, most recent first.
func (db *Database) RatingsByUser(userID string) ([]models.Rating, error) {
	var ratings []models.Rating
	if err := db.conn.
		Where("user_id = ?", userID).
		Order("rated_at DESC").
		Find(&ratings).Error; err != nil {
		return nil, fmt.Errorf("failed to list ratings for user '%s': %w", userID, err)
	}
	return ratings, nil
}
