package models

import "time"

// Comment is user-authored text attached to an album. A comment is either a
// top-level post or, when ParentID is set, a reply to another comment. The
// album owner may attach a single response to any comment.
type Comment struct {
	ID       string `gorm:"primaryKey" json:"id"`
	AlbumID  string `gorm:"not null;index" json:"albumId"`
	UserID   string `gorm:"not null;index" json:"userId"`
	UserName string `gorm:"not null" json:"userName"`

	Content  string    `gorm:"not null" json:"content"`
	PostedAt time.Time `gorm:"not null" json:"postedAt"`

	// Optional response by the album owner; set at most once.
	OwnerResponse *string    `json:"ownerResponse,omitempty"`
	RespondedAt   *time.Time `json:"respondedAt,omitempty"`

	// Replies reference their parent comment. The relation is recursive so
	// deeper nesting is structurally possible, and deleting a parent is
	// restricted while replies exist so a delete never orphans a thread.
	ParentID *string   `gorm:"index" json:"parentId,omitempty"`
	Replies  []Comment `gorm:"foreignKey:ParentID;constraint:OnDelete:RESTRICT" json:"replies,omitempty"`
}

// Responded reports whether the album owner has attached a response.
func (c *Comment) Responded() bool {
	return c.OwnerResponse != nil
}
