package database

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"crescendo/pkg/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateUser persists a new user. Identity and join time are stamped
// server-side.
func (db *Database) CreateUser(user *models.User) error {
	user.ID = uuid.NewString()
	user.JoinedAt = time.Now()

	if err := db.conn.Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user '%s': %w", user.Username, err)
	}

	db.logger.WithField("username", user.Username).Info("User created")
	return nil
}

// GetUser returns a user by id, or nil if the id is unknown.
func (db *Database) GetUser(id string) (*models.User, error) {
	var user models.User
	err := db.conn.First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user '%s': %w", id, err)
	}
	return &user, nil
}

// GetUserByUsername returns a user by username, or nil if no such user
// exists.
func (db *Database) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	err := db.conn.First(&user, "username = ?", username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by name '%s': %w", username, err)
	}
	return &user, nil
}

// GetUserByEmail returns a user by email, or nil if no such user exists.
func (db *Database) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := db.conn.First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

// UpdateProfile updates a user's bio and profile image path. Returns false
// if the id is unknown.
func (db *Database) UpdateProfile(userID, bio, profileImagePath string) (bool, error) {
	result := db.conn.Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"bio":                bio,
			"profile_image_path": profileImagePath,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to update profile of user '%s': %w", userID, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// DeleteUser removes a user account. The delete is restricted while the
// user still has albums, ratings or comments; those must be removed first.
// Returns false both for an unknown id and for a restricted delete.
func (db *Database) DeleteUser(id string) (bool, error) {
	deleted := false
	err := db.conn.Transaction(func(tx *gorm.DB) error {
		var user models.User
		err := tx.First(&user, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		for _, dependent := range []interface{}{
			&models.Album{}, &models.Rating{}, &models.Comment{},
		} {
			var count int64
			if err := tx.Model(dependent).Where("user_id = ?", id).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return nil
			}
		}

		if err := tx.Delete(&user).Error; err != nil {
			return err
		}
		deleted = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete user '%s': %w", id, err)
	}

	if deleted {
		db.logger.WithField("user_id", id).Info("User deleted")
	}
	return deleted, nil
}

// UserAverageRating returns the mean of per-album average ratings across a
// user's albums that have at least one rating, or 0 when the user has no
// rated albums.
func (db *Database) UserAverageRating(userID string) (float64, error) {
	var albums []models.Album
	if err := db.conn.
		Preload("Ratings").
		Where("user_id = ?", userID).
		Find(&albums).Error; err != nil {
		return 0, fmt.Errorf("failed to load albums for user '%s': %w", userID, err)
	}
	return averageOfRated(albums), nil
}

// TopUsers ranks users by album count descending, tie-broken by average
// album rating descending and then username, truncated to count.
func (db *Database) TopUsers(count int) ([]models.UserStats, error) {
	var users []models.User
	if err := db.conn.
		Preload("Albums.Ratings").
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}

	stats := make([]models.UserStats, 0, len(users))
	for _, user := range users {
		stats = append(stats, models.UserStats{
			UserID:             user.ID,
			Username:           user.Username,
			AlbumCount:         len(user.Albums),
			AverageAlbumRating: averageOfRated(user.Albums),
		})
	}

	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].AlbumCount != stats[j].AlbumCount {
			return stats[i].AlbumCount > stats[j].AlbumCount
		}
		if stats[i].AverageAlbumRating != stats[j].AverageAlbumRating {
			return stats[i].AverageAlbumRating > stats[j].AverageAlbumRating
		}
		return stats[i].Username < stats[j].Username
	})

	if len(stats) > count {
		stats = stats[:count]
	}
	return stats, nil
}

// averageOfRated is the mean of per-album average ratings over the albums
// that have at least one rating, or 0 when none do. Unrated albums carry
// the sentinel average and are excluded rather than dragging the mean down.
func averageOfRated(albums []models.Album) float64 {
	sum, n := 0.0, 0
	for i := range albums {
		if albums[i].Rated() {
			sum += albums[i].AverageRating()
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
