package database

import (
	"errors"
	"fmt"
	"time"

	"crescendo/pkg/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AddComment inserts a new top-level comment with a server-stamped
// timestamp.
func (db *Database) AddComment(albumID, userID, userName, content string) (*models.Comment, error) {
	comment := &models.Comment{
		ID:       uuid.NewString(),
		AlbumID:  albumID,
		UserID:   userID,
		UserName: userName,
		Content:  content,
		PostedAt: time.Now(),
	}

	if err := db.conn.Create(comment).Error; err != nil {
		return nil, fmt.Errorf("failed to add comment to album '%s': %w", albumID, err)
	}
	return comment, nil
}

// AddReply inserts a comment referencing a parent comment. Returns nil
// without writing anything when the parent does not exist under the given
// album.
func (db *Database) AddReply(albumID, parentCommentID, userID, userName, content string) (*models.Comment, error) {
	var parent models.Comment
	err := db.conn.First(&parent, "id = ? AND album_id = ?", parentCommentID, albumID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up parent comment '%s': %w", parentCommentID, err)
	}

	reply := &models.Comment{
		ID:       uuid.NewString(),
		AlbumID:  albumID,
		UserID:   userID,
		UserName: userName,
		Content:  content,
		PostedAt: time.Now(),
		ParentID: &parent.ID,
	}

	if err := db.conn.Create(reply).Error; err != nil {
		return nil, fmt.Errorf("failed to add reply to comment '%s': %w", parentCommentID, err)
	}
	return reply, nil
}

// AddOwnerResponse attaches the album owner's response to a comment. Returns
// false, leaving the comment untouched, unless the requesting user owns the
// album the comment belongs to.
func (db *Database) AddOwnerResponse(commentID, response, requestingUserID string) (bool, error) {
	var comment models.Comment
	err := db.conn.First(&comment, "id = ?", commentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up comment '%s': %w", commentID, err)
	}

	var album models.Album
	err = db.conn.First(&album, "id = ?", comment.AlbumID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up album '%s': %w", comment.AlbumID, err)
	}

	if album.UserID != requestingUserID {
		return false, nil
	}

	now := time.Now()
	if err := db.conn.Model(&comment).Updates(map[string]interface{}{
		"owner_response": response,
		"responded_at":   now,
	}).Error; err != nil {
		return false, fmt.Errorf("failed to set owner response on comment '%s': %w", commentID, err)
	}
	return true, nil
}

// GetComment returns a comment by id with its replies loaded, or nil if the
// id is unknown.
func (db *Database) GetComment(id string) (*models.Comment, error) {
	var comment models.Comment
	err := db.conn.Preload("Replies").First(&comment, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get comment '%s': %w", id, err)
	}
	return &comment, nil
}

// DeleteComment removes a comment. Returns false when the comment does not
// exist or still has replies; a parent is never deleted out from under its
// thread.
func (db *Database) DeleteComment(id string) (bool, error) {
	var replies int64
	if err := db.conn.Model(&models.Comment{}).
		Where("parent_id = ?", id).
		Count(&replies).Error; err != nil {
		return false, fmt.Errorf("failed to count replies of comment '%s': %w", id, err)
	}
	if replies > 0 {
		return false, nil
	}

	result := db.conn.Delete(&models.Comment{}, "id = ?", id)
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete comment '%s': %w", id, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// CommentsByUser returns all comments a user has posted, most recent first.
func (db *Database) CommentsByUser(userID string) ([]models.Comment, error) {
	var comments []models.Comment
	if err := db.conn.
		Where("user_id = ?", userID).
		Order("posted_at DESC").
		Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("failed to list comments for user '%s': %w", userID, err)
	}
	return comments, nil
}
