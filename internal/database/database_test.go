package database

import (
	"path/filepath"
	"testing"
	"time"

	"crescendo/pkg/models"
)

func newTestDatabase(t *testing.T) *Database {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := NewDatabase(dbPath)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedUser(t *testing.T, db *Database, username string) *models.User {
	t.Helper()

	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "not-a-real-hash",
	}
	if err := db.CreateUser(user); err != nil {
		t.Fatalf("Failed to seed user %s: %v", username, err)
	}
	return user
}

func seedAlbum(t *testing.T, db *Database, owner *models.User, title string) *models.Album {
	t.Helper()

	album := &models.Album{
		Title:       title,
		Artist:      "Test Artist",
		Genre:       "Jazz",
		Description: "A deliberately long description of the album, well past the fifty character floor.",
		Links:       []models.AlbumLink{{URL: "https://example.com/" + title}},
	}
	if err := db.CreateAlbum(album, owner.ID, owner.Username); err != nil {
		t.Fatalf("Failed to seed album %s: %v", title, err)
	}
	return album
}

func TestAlbumLifecycle(t *testing.T) {
	db := newTestDatabase(t)
	owner := seedUser(t, db, "uploader")

	t.Run("CreateStampsOwnership", func(t *testing.T) {
		album := seedAlbum(t, db, owner, "First")

		if album.ID == "" {
			t.Fatal("Expected server-assigned album ID")
		}
		if album.UserID != owner.ID || album.UserName != owner.Username {
			t.Errorf("Expected owner %s/%s, got %s/%s", owner.ID, owner.Username, album.UserID, album.UserName)
		}
		if album.UploadedAt.IsZero() {
			t.Error("Expected server-stamped upload time")
		}
	})

	t.Run("GetLoadsGraph", func(t *testing.T) {
		album := seedAlbum(t, db, owner, "Graph")

		loaded, err := db.GetAlbum(album.ID)
		if err != nil {
			t.Fatalf("Failed to get album: %v", err)
		}
		if loaded == nil {
			t.Fatal("Expected album, got nil")
		}
		if len(loaded.Links) != 1 {
			t.Errorf("Expected 1 link, got %d", len(loaded.Links))
		}
		if loaded.Owner == nil || loaded.Owner.Username != owner.Username {
			t.Error("Expected owner profile to be eagerly loaded")
		}
	})

	t.Run("GetUnknownReturnsNil", func(t *testing.T) {
		loaded, err := db.GetAlbum("no-such-id")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if loaded != nil {
			t.Error("Expected nil for unknown album id")
		}
	})

	t.Run("ListNewestFirst", func(t *testing.T) {
		albums, err := db.ListAlbums()
		if err != nil {
			t.Fatalf("Failed to list albums: %v", err)
		}
		if len(albums) < 2 {
			t.Fatalf("Expected at least 2 albums, got %d", len(albums))
		}
		for i := 1; i < len(albums); i++ {
			if albums[i].UploadedAt.After(albums[i-1].UploadedAt) {
				t.Error("Expected albums ordered by upload time descending")
			}
		}
	})
}

func TestUpdateAlbum(t *testing.T) {
	db := newTestDatabase(t)
	owner := seedUser(t, db, "editor")

	album := seedAlbum(t, db, owner, "Original")
	album.Image = []byte{0x89, 0x50, 0x4e, 0x47}
	album.ImageContentType = "image/png"
	if _, err := db.UpdateAlbum(album); err != nil {
		t.Fatalf("Failed to set initial image: %v", err)
	}

	t.Run("EmptyImageKeepsPrevious", func(t *testing.T) {
		update := &models.Album{
			ID:          album.ID,
			Title:       "Renamed",
			Artist:      album.Artist,
			Genre:       "Ambient",
			Description: album.Description,
			Links: []models.AlbumLink{
				{URL: "https://example.com/one"},
				{URL: "https://example.com/two"},
			},
		}
		found, err := db.UpdateAlbum(update)
		if err != nil {
			t.Fatalf("Failed to update album: %v", err)
		}
		if !found {
			t.Fatal("Expected update to find the album")
		}

		loaded, err := db.GetAlbum(album.ID)
		if err != nil || loaded == nil {
			t.Fatalf("Failed to reload album: %v", err)
		}
		if loaded.Title != "Renamed" || loaded.Genre != "Ambient" {
			t.Errorf("Expected metadata update, got title=%q genre=%q", loaded.Title, loaded.Genre)
		}
		if !loaded.HasImage() || loaded.ImageContentType != "image/png" {
			t.Error("Expected prior image to survive an update without new image bytes")
		}
	})

	t.Run("LinksReplacedWholesale", func(t *testing.T) {
		loaded, err := db.GetAlbum(album.ID)
		if err != nil || loaded == nil {
			t.Fatalf("Failed to reload album: %v", err)
		}
		if len(loaded.Links) != 2 {
			t.Fatalf("Expected 2 links after replacement, got %d", len(loaded.Links))
		}
		if loaded.Links[0].URL != "https://example.com/one" || loaded.Links[1].URL != "https://example.com/two" {
			t.Error("Expected link order to be preserved")
		}
	})

	t.Run("UnknownAlbumReturnsFalse", func(t *testing.T) {
		found, err := db.UpdateAlbum(&models.Album{ID: "no-such-id", Title: "x"})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if found {
			t.Error("Expected false for unknown album id")
		}
	})
}

func TestRatingUpsert(t *testing.T) {
	db := newTestDatabase(t)
	owner := seedUser(t, db, "owner")
	rater := seedUser(t, db, "rater")
	album := seedAlbum(t, db, owner, "Rated")

	ok, err := db.AddOrUpdateRating(album.ID, rater.ID, rater.Username, 80, "solid")
	if err != nil || !ok {
		t.Fatalf("Failed to add rating: ok=%v err=%v", ok, err)
	}

	loaded, err := db.GetAlbum(album.ID)
	if err != nil || loaded == nil {
		t.Fatalf("Failed to reload album: %v", err)
	}
	if len(loaded.Ratings) != 1 {
		t.Fatalf("Expected 1 rating, got %d", len(loaded.Ratings))
	}
	firstRatedAt := loaded.Ratings[0].RatedAt

	time.Sleep(10 * time.Millisecond)

	// Re-rating must update the existing row, never insert a second one
	ok, err = db.AddOrUpdateRating(album.ID, rater.ID, rater.Username, 40, "changed my mind")
	if err != nil || !ok {
		t.Fatalf("Failed to re-rate: ok=%v err=%v", ok, err)
	}

	loaded, err = db.GetAlbum(album.ID)
	if err != nil || loaded == nil {
		t.Fatalf("Failed to reload album: %v", err)
	}
	if len(loaded.Ratings) != 1 {
		t.Fatalf("Expected exactly 1 rating after re-rating, got %d", len(loaded.Ratings))
	}
	if loaded.Ratings[0].Value != 40 {
		t.Errorf("Expected updated value 40, got %d", loaded.Ratings[0].Value)
	}
	if loaded.Ratings[0].Review != "changed my mind" {
		t.Errorf("Expected updated review, got %q", loaded.Ratings[0].Review)
	}
	if !loaded.Ratings[0].RatedAt.After(firstRatedAt) {
		t.Error("Expected re-rating to advance the timestamp")
	}

	t.Run("UnknownAlbumReturnsFalse", func(t *testing.T) {
		ok, err := db.AddOrUpdateRating("no-such-id", rater.ID, rater.Username, 50, "")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if ok {
			t.Error("Expected false for unknown album id")
		}
	})
}

func TestCommentTree(t *testing.T) {
	db := newTestDatabase(t)
	owner := seedUser(t, db, "host")
	visitor := seedUser(t, db, "visitor")
	album := seedAlbum(t, db, owner, "Discussed")

	comment, err := db.AddComment(album.ID, visitor.ID, visitor.Username, "love the horns")
	if err != nil {
		t.Fatalf("Failed to add comment: %v", err)
	}

	t.Run("ReplyToExistingParent", func(t *testing.T) {
		reply, err := db.AddReply(album.ID, comment.ID, owner.ID, owner.Username, "me too")
		if err != nil {
			t.Fatalf("Failed to add reply: %v", err)
		}
		if reply == nil {
			t.Fatal("Expected reply, got nil")
		}
		if reply.ParentID == nil || *reply.ParentID != comment.ID {
			t.Error("Expected reply to reference its parent")
		}

		loaded, err := db.GetAlbum(album.ID)
		if err != nil || loaded == nil {
			t.Fatalf("Failed to reload album: %v", err)
		}
		if len(loaded.Comments) != 1 {
			t.Fatalf("Expected 1 top-level comment, got %d", len(loaded.Comments))
		}
		if len(loaded.Comments[0].Replies) != 1 {
			t.Errorf("Expected 1 reply on the comment, got %d", len(loaded.Comments[0].Replies))
		}
	})

	t.Run("ReplyToMissingParentWritesNothing", func(t *testing.T) {
		reply, err := db.AddReply(album.ID, "no-such-comment", visitor.ID, visitor.Username, "orphan")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if reply != nil {
			t.Error("Expected nil result for missing parent")
		}

		comments, err := db.CommentsByUser(visitor.ID)
		if err != nil {
			t.Fatalf("Failed to list comments: %v", err)
		}
		if len(comments) != 1 {
			t.Errorf("Expected no new comment rows, found %d", len(comments))
		}
	})

	t.Run("ReplyToParentOnWrongAlbum", func(t *testing.T) {
		other := seedAlbum(t, db, owner, "Other")
		reply, err := db.AddReply(other.ID, comment.ID, visitor.ID, visitor.Username, "wrong thread")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if reply != nil {
			t.Error("Expected nil result when parent belongs to another album")
		}
	})

	t.Run("DeleteParentWithRepliesRestricted", func(t *testing.T) {
		deleted, err := db.DeleteComment(comment.ID)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if deleted {
			t.Error("Expected delete of a parent with replies to be restricted")
		}
	})
}

func TestOwnerResponse(t *testing.T) {
	db := newTestDatabase(t)
	owner := seedUser(t, db, "band")
	fan := seedUser(t, db, "fan")
	album := seedAlbum(t, db, owner, "Responded")

	comment, err := db.AddComment(album.ID, fan.ID, fan.Username, "any vinyl pressing?")
	if err != nil {
		t.Fatalf("Failed to add comment: %v", err)
	}

	t.Run("NonOwnerDenied", func(t *testing.T) {
		ok, err := db.AddOwnerResponse(comment.ID, "yes!", fan.ID)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if ok {
			t.Fatal("Expected non-owner response to be denied")
		}

		loaded, err := db.GetComment(comment.ID)
		if err != nil || loaded == nil {
			t.Fatalf("Failed to reload comment: %v", err)
		}
		if loaded.Responded() {
			t.Error("Expected response fields to stay untouched after denial")
		}
	})

	t.Run("OwnerSucceeds", func(t *testing.T) {
		ok, err := db.AddOwnerResponse(comment.ID, "pressing ships next month", owner.ID)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !ok {
			t.Fatal("Expected owner response to succeed")
		}

		loaded, err := db.GetComment(comment.ID)
		if err != nil || loaded == nil {
			t.Fatalf("Failed to reload comment: %v", err)
		}
		if !loaded.Responded() || *loaded.OwnerResponse != "pressing ships next month" {
			t.Error("Expected owner response to be stored")
		}
		if loaded.RespondedAt == nil {
			t.Error("Expected response timestamp to be stamped")
		}
	})

	t.Run("UnknownCommentReturnsFalse", func(t *testing.T) {
		ok, err := db.AddOwnerResponse("no-such-comment", "hello", owner.ID)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if ok {
			t.Error("Expected false for unknown comment id")
		}
	})
}

func TestDeleteAlbumCascades(t *testing.T) {
	db := newTestDatabase(t)
	owner := seedUser(t, db, "cascade")
	rater := seedUser(t, db, "cascade-rater")
	album := seedAlbum(t, db, owner, "Doomed")

	if ok, err := db.AddOrUpdateRating(album.ID, rater.ID, rater.Username, 75, ""); err != nil || !ok {
		t.Fatalf("Failed to add rating: %v", err)
	}
	comment, err := db.AddComment(album.ID, rater.ID, rater.Username, "short lived")
	if err != nil {
		t.Fatalf("Failed to add comment: %v", err)
	}
	if _, err := db.AddReply(album.ID, comment.ID, owner.ID, owner.Username, "indeed"); err != nil {
		t.Fatalf("Failed to add reply: %v", err)
	}

	deleted, err := db.DeleteAlbum(album.ID)
	if err != nil {
		t.Fatalf("Failed to delete album: %v", err)
	}
	if !deleted {
		t.Fatal("Expected delete to succeed")
	}

	if loaded, _ := db.GetAlbum(album.ID); loaded != nil {
		t.Error("Expected album to be gone")
	}
	if ratings, _ := db.RatingsByUser(rater.ID); len(ratings) != 0 {
		t.Errorf("Expected cascade to remove ratings, found %d", len(ratings))
	}
	if comments, _ := db.CommentsByUser(rater.ID); len(comments) != 0 {
		t.Errorf("Expected cascade to remove comments, found %d", len(comments))
	}

	t.Run("UnknownAlbumReturnsFalse", func(t *testing.T) {
		deleted, err := db.DeleteAlbum("no-such-id")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if deleted {
			t.Error("Expected false for unknown album id")
		}
	})
}

func TestDeleteUserRestricted(t *testing.T) {
	db := newTestDatabase(t)
	owner := seedUser(t, db, "resident")
	rater := seedUser(t, db, "leaver")
	album := seedAlbum(t, db, owner, "Sticky")

	if ok, err := db.AddOrUpdateRating(album.ID, rater.ID, rater.Username, 60, ""); err != nil || !ok {
		t.Fatalf("Failed to add rating: %v", err)
	}

	deleted, err := db.DeleteUser(rater.ID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if deleted {
		t.Fatal("Expected delete to be restricted while a rating exists")
	}
	if user, _ := db.GetUser(rater.ID); user == nil {
		t.Fatal("Expected restricted user to still exist")
	}

	if _, err := db.DeleteRating(album.ID, rater.ID); err != nil {
		t.Fatalf("Failed to remove rating: %v", err)
	}

	deleted, err = db.DeleteUser(rater.ID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !deleted {
		t.Error("Expected delete to succeed once dependents are gone")
	}
}

func TestUserAggregates(t *testing.T) {
	db := newTestDatabase(t)
	prolific := seedUser(t, db, "prolific")
	quiet := seedUser(t, db, "quiet")
	rater := seedUser(t, db, "critic")

	first := seedAlbum(t, db, prolific, "One")
	seedAlbum(t, db, prolific, "Two") // stays unrated
	second := seedAlbum(t, db, quiet, "Three")

	if ok, err := db.AddOrUpdateRating(first.ID, rater.ID, rater.Username, 90, ""); err != nil || !ok {
		t.Fatalf("Failed to rate: %v", err)
	}
	if ok, err := db.AddOrUpdateRating(second.ID, rater.ID, rater.Username, 70, ""); err != nil || !ok {
		t.Fatalf("Failed to rate: %v", err)
	}

	t.Run("UserAverageIgnoresUnrated", func(t *testing.T) {
		avg, err := db.UserAverageRating(prolific.ID)
		if err != nil {
			t.Fatalf("Failed to compute average: %v", err)
		}
		if avg != 90 {
			t.Errorf("Expected average 90 over rated albums only, got %v", avg)
		}
	})

	t.Run("UserWithoutRatedAlbumsIsZero", func(t *testing.T) {
		avg, err := db.UserAverageRating(rater.ID)
		if err != nil {
			t.Fatalf("Failed to compute average: %v", err)
		}
		if avg != 0 {
			t.Errorf("Expected 0 for user without rated albums, got %v", avg)
		}
	})

	t.Run("TopUsersByAlbumCount", func(t *testing.T) {
		stats, err := db.TopUsers(2)
		if err != nil {
			t.Fatalf("Failed to rank users: %v", err)
		}
		if len(stats) != 2 {
			t.Fatalf("Expected 2 entries, got %d", len(stats))
		}
		if stats[0].Username != "prolific" {
			t.Errorf("Expected prolific first by album count, got %s", stats[0].Username)
		}
		if stats[0].AlbumCount != 2 {
			t.Errorf("Expected album count 2, got %d", stats[0].AlbumCount)
		}
		if stats[1].Username != "quiet" {
			t.Errorf("Expected quiet second, got %s", stats[1].Username)
		}
	})
}
