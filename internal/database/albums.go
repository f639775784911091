package database

import (
	"errors"
	"fmt"
	"time"

	"crescendo/pkg/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// withAlbumGraph attaches the eager loads every album read uses: ordered
// links, ratings, top-level comments with their reply sub-trees, and the
// owner profile.
func withAlbumGraph(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Links", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("position ASC")
		}).
		Preload("Ratings").
		Preload("Comments", func(tx *gorm.DB) *gorm.DB {
			return tx.Where("parent_id IS NULL").Order("posted_at ASC")
		}).
		Preload("Comments.Replies", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("posted_at ASC")
		}).
		Preload("Owner")
}

// ListAlbums returns every album with its full relationship graph loaded,
// newest upload first. No pagination; data volumes are expected to stay
// small on a single instance.
func (db *Database) ListAlbums() ([]models.Album, error) {
	var albums []models.Album
	if err := withAlbumGraph(db.conn).
		Order("uploaded_at DESC").
		Find(&albums).Error; err != nil {
		return nil, fmt.Errorf("failed to list albums: %w", err)
	}
	return albums, nil
}

// GetAlbum returns one album with its graph loaded, or nil if the id is
// unknown.
func (db *Database) GetAlbum(id string) (*models.Album, error) {
	var album models.Album
	err := withAlbumGraph(db.conn).First(&album, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get album '%s': %w", id, err)
	}
	return &album, nil
}

// ListAlbumsForUser returns the albums uploaded by one user, newest first.
func (db *Database) ListAlbumsForUser(userID string) ([]models.Album, error) {
	var albums []models.Album
	if err := withAlbumGraph(db.conn).
		Where("user_id = ?", userID).
		Order("uploaded_at DESC").
		Find(&albums).Error; err != nil {
		return nil, fmt.Errorf("failed to list albums for user '%s': %w", userID, err)
	}
	return albums, nil
}

// CreateAlbum persists a new album. Identity, ownership and upload time are
// stamped server-side; any client-supplied values for them are overwritten.
func (db *Database) CreateAlbum(album *models.Album, userID, userName string) error {
	album.ID = uuid.NewString()
	album.UserID = userID
	album.UserName = userName
	album.UploadedAt = time.Now()
	for i := range album.Links {
		album.Links[i].AlbumID = album.ID
		album.Links[i].Position = i
	}

	if err := db.conn.Create(album).Error; err != nil {
		return fmt.Errorf("failed to create album '%s': %w", album.Title, err)
	}

	db.logger.WithFields(logrus.Fields{
		"album_id": album.ID,
		"user_id":  userID,
		"title":    album.Title,
	}).Info("Album created")
	return nil
}

// UpdateAlbum updates an album's metadata. The cover image is replaced only
// when new image bytes are provided; the link list is replaced wholesale
// rather than diffed. Returns false if no album matches the id.
func (db *Database) UpdateAlbum(album *models.Album) (bool, error) {
	found := false
	err := db.conn.Transaction(func(tx *gorm.DB) error {
		var existing models.Album
		err := tx.First(&existing, "id = ?", album.ID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true

		updates := map[string]interface{}{
			"title":       album.Title,
			"artist":      album.Artist,
			"genre":       album.Genre,
			"year":        album.Year,
			"description": album.Description,
		}
		// An empty upload keeps the previous cover image
		if len(album.Image) > 0 {
			updates["image"] = album.Image
			updates["image_content_type"] = album.ImageContentType
		}
		if err := tx.Model(&existing).Updates(updates).Error; err != nil {
			return err
		}

		if err := tx.Where("album_id = ?", album.ID).Delete(&models.AlbumLink{}).Error; err != nil {
			return err
		}
		links := make([]models.AlbumLink, 0, len(album.Links))
		for i, link := range album.Links {
			links = append(links, models.AlbumLink{
				AlbumID:  album.ID,
				URL:      link.URL,
				Position: i,
			})
		}
		if len(links) > 0 {
			if err := tx.Create(&links).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to update album '%s': %w", album.ID, err)
	}
	return found, nil
}

// DeleteAlbum removes an album together with its ratings, comments and
// links. Returns false if the id is unknown.
func (db *Database) DeleteAlbum(id string) (bool, error) {
	found := false
	err := db.conn.Transaction(func(tx *gorm.DB) error {
		var album models.Album
		err := tx.First(&album, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true

		// The reply relation restricts parent deletes; defer constraint
		// checks to commit so the whole comment tree can go in one sweep.
		if err := tx.Exec("PRAGMA defer_foreign_keys = ON").Error; err != nil {
			return err
		}
		if err := tx.Where("album_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("album_id = ?", id).Delete(&models.Rating{}).Error; err != nil {
			return err
		}
		if err := tx.Where("album_id = ?", id).Delete(&models.AlbumLink{}).Error; err != nil {
			return err
		}
		return tx.Delete(&album).Error
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete album '%s': %w", id, err)
	}

	if found {
		db.logger.WithField("album_id", id).Info("Album deleted")
	}
	return found, nil
}
