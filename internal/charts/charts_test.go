package charts

import (
	"testing"
	"time"

	"crescendo/pkg/models"
)

func albumWithRatings(id, userID, userName string, uploadedAt time.Time, values ...int) models.Album {
	album := models.Album{
		ID:         id,
		UserID:     userID,
		UserName:   userName,
		Title:      id,
		UploadedAt: uploadedAt,
	}
	for _, v := range values {
		album.Ratings = append(album.Ratings, models.Rating{AlbumID: id, Value: v})
	}
	return album
}

func TestTopRated(t *testing.T) {
	now := time.Now()

	t.Run("ExcludesUnratedAndOrdersByAverage", func(t *testing.T) {
		albums := []models.Album{
			albumWithRatings("mid", "u1", "alice", now, 50),
			albumWithRatings("best", "u1", "alice", now, 90),
			albumWithRatings("silent", "u2", "bob", now), // no ratings
			albumWithRatings("worst", "u2", "bob", now, 10),
			albumWithRatings("good", "u3", "carol", now, 60, 80),
		}

		top := topRated(albums, 10)

		want := []string{"best", "good", "mid", "worst"}
		if len(top) != len(want) {
			t.Fatalf("Expected %d albums, got %d", len(want), len(top))
		}
		for i, id := range want {
			if top[i].ID != id {
				t.Errorf("Position %d: expected %s, got %s", i, id, top[i].ID)
			}
		}
	})

	t.Run("TiesBrokenByNewestUpload", func(t *testing.T) {
		albums := []models.Album{
			albumWithRatings("older", "u1", "alice", now.Add(-time.Hour), 70),
			albumWithRatings("newer", "u2", "bob", now, 70),
		}

		top := topRated(albums, 2)
		if top[0].ID != "newer" || top[1].ID != "older" {
			t.Errorf("Expected newest first on tied averages, got %s then %s", top[0].ID, top[1].ID)
		}
	})

	t.Run("TruncatesToCount", func(t *testing.T) {
		albums := []models.Album{
			albumWithRatings("a", "u1", "alice", now, 90),
			albumWithRatings("b", "u1", "alice", now, 80),
			albumWithRatings("c", "u1", "alice", now, 70),
		}

		top := topRated(albums, 2)
		if len(top) != 2 {
			t.Fatalf("Expected 2 albums, got %d", len(top))
		}
		if top[0].ID != "a" || top[1].ID != "b" {
			t.Errorf("Expected a,b after truncation, got %s,%s", top[0].ID, top[1].ID)
		}
	})
}

func TestUploadedSince(t *testing.T) {
	now := time.Now()
	albums := []models.Album{
		albumWithRatings("recent", "u1", "alice", now.Add(-time.Hour)),
		albumWithRatings("boundary", "u1", "alice", now.Add(-week)),
		albumWithRatings("stale", "u2", "bob", now.Add(-week-time.Minute)),
	}

	recent := uploadedSince(albums, now.Add(-week))
	if len(recent) != 2 {
		t.Fatalf("Expected 2 albums inside the window, got %d", len(recent))
	}
	for _, album := range recent {
		if album.ID == "stale" {
			t.Error("Expected albums older than the cutoff to be excluded")
		}
	}
}

func TestTopUploadersSince(t *testing.T) {
	now := time.Now()
	cutoff := now.Add(-week)

	t.Run("ExcludesUsersWithOnlyOldUploads", func(t *testing.T) {
		albums := []models.Album{
			albumWithRatings("fresh", "u1", "alice", now, 80),
			albumWithRatings("ancient", "u2", "bob", now.Add(-30*24*time.Hour), 100),
		}

		stats := topUploadersSince(albums, cutoff, 5)
		if len(stats) != 1 {
			t.Fatalf("Expected 1 uploader inside the window, got %d", len(stats))
		}
		if stats[0].Username != "alice" {
			t.Errorf("Expected alice, got %s", stats[0].Username)
		}
	})

	t.Run("RanksByMeanOfAlbumAverages", func(t *testing.T) {
		albums := []models.Album{
			albumWithRatings("a1", "u1", "alice", now, 60),
			albumWithRatings("a2", "u1", "alice", now, 80),
			albumWithRatings("b1", "u2", "bob", now, 90),
		}

		stats := topUploadersSince(albums, cutoff, 5)
		if len(stats) != 2 {
			t.Fatalf("Expected 2 uploaders, got %d", len(stats))
		}
		if stats[0].Username != "bob" || stats[0].AverageAlbumRating != 90 {
			t.Errorf("Expected bob first with 90, got %s with %v", stats[0].Username, stats[0].AverageAlbumRating)
		}
		if stats[1].AverageAlbumRating != 70 {
			t.Errorf("Expected alice's mean 70, got %v", stats[1].AverageAlbumRating)
		}
	})

	t.Run("UnratedUploadsStillCount", func(t *testing.T) {
		albums := []models.Album{
			albumWithRatings("quietdrop", "u3", "carol", now),
		}

		stats := topUploadersSince(albums, cutoff, 5)
		if len(stats) != 1 {
			t.Fatalf("Expected 1 uploader, got %d", len(stats))
		}
		if stats[0].AlbumCount != 1 || stats[0].AverageAlbumRating != 0 {
			t.Errorf("Expected count 1 with average 0, got count %d average %v",
				stats[0].AlbumCount, stats[0].AverageAlbumRating)
		}
	})

	t.Run("TiesBrokenByAlbumCountThenUsername", func(t *testing.T) {
		albums := []models.Album{
			albumWithRatings("x1", "u1", "zoe", now, 70),
			albumWithRatings("x2", "u1", "zoe", now, 70),
			albumWithRatings("y1", "u2", "amy", now, 70),
		}

		stats := topUploadersSince(albums, cutoff, 5)
		if stats[0].Username != "zoe" {
			t.Errorf("Expected zoe first on album count, got %s", stats[0].Username)
		}

		stats = topUploadersSince(albums[1:], cutoff, 5)
		if stats[0].Username != "amy" {
			t.Errorf("Expected amy first alphabetically on full tie, got %s", stats[0].Username)
		}
	})
}

func TestMeanAlbumRating(t *testing.T) {
	now := time.Now()

	t.Run("IgnoresUnratedAlbums", func(t *testing.T) {
		albums := []models.Album{
			albumWithRatings("rated", "u1", "alice", now, 80),
			albumWithRatings("unrated", "u1", "alice", now),
		}
		if got := meanAlbumRating(albums); got != 80 {
			t.Errorf("Expected 80, got %v", got)
		}
	})

	t.Run("ZeroWhenNothingRated", func(t *testing.T) {
		albums := []models.Album{albumWithRatings("unrated", "u1", "alice", now)}
		if got := meanAlbumRating(albums); got != 0 {
			t.Errorf("Expected 0, got %v", got)
		}
	})
}

func TestDecile(t *testing.T) {
	cases := map[int]int{0: 0, 9: 0, 10: 10, 55: 50, 99: 90, 100: 100}
	for value, want := range cases {
		if got := decile(value); got != want {
			t.Errorf("decile(%d): expected %d, got %d", value, want, got)
		}
	}
}
