package charts

import (
	"sort"
	"time"

	"crescendo/internal/database"
	"crescendo/pkg/models"
)

// week is the trailing window used by the weekly leaderboards.
const week = 7 * 24 * time.Hour

// Service computes leaderboards and per-user statistics on demand. Nothing
// here is persisted; every call derives its result from current album data.
type Service struct {
	db *database.Database
}

// NewService creates a chart service backed by the given database.
func NewService(db *database.Database) *Service {
	return &Service{db: db}
}

// TopAlbumsAllTime returns the highest-rated albums, best first, excluding
// albums with no ratings.
func (s *Service) TopAlbumsAllTime(count int) ([]models.Album, error) {
	albums, err := s.db.ListAlbums()
	if err != nil {
		return nil, err
	}
	return topRated(albums, count), nil
}

// TopAlbumsThisWeek is TopAlbumsAllTime restricted to albums uploaded in
// the trailing seven days.
func (s *Service) TopAlbumsThisWeek(count int) ([]models.Album, error) {
	albums, err := s.db.ListAlbums()
	if err != nil {
		return nil, err
	}
	return topRated(uploadedSince(albums, time.Now().Add(-week)), count), nil
}

// LatestAlbums returns the most recently uploaded albums, newest first,
// with no rating requirement.
func (s *Service) LatestAlbums(count int) ([]models.Album, error) {
	albums, err := s.db.ListAlbums() // already ordered newest first
	if err != nil {
		return nil, err
	}
	if len(albums) > count {
		albums = albums[:count]
	}
	return albums, nil
}

// TopUsersThisWeek ranks uploaders by the mean of per-album average ratings
// across their albums uploaded in the trailing seven days. Users with no
// upload inside the window are excluded no matter how their older albums
// are rated; a user whose recent albums are all unrated ranks with average
// zero.
func (s *Service) TopUsersThisWeek(count int) ([]models.UserStats, error) {
	albums, err := s.db.ListAlbums()
	if err != nil {
		return nil, err
	}
	return topUploadersSince(albums, time.Now().Add(-week), count), nil
}

// topUploadersSince groups albums uploaded at or after the cutoff by
// uploader and ranks the groups by mean album rating. Ties order by album
// count, then username, for deterministic output.
func topUploadersSince(albums []models.Album, cutoff time.Time, count int) []models.UserStats {
	recent := uploadedSince(albums, cutoff)

	grouped := make(map[string][]models.Album)
	for _, album := range recent {
		grouped[album.UserID] = append(grouped[album.UserID], album)
	}

	stats := make([]models.UserStats, 0, len(grouped))
	for userID, userAlbums := range grouped {
		stats = append(stats, models.UserStats{
			UserID:             userID,
			Username:           userAlbums[0].UserName,
			AlbumCount:         len(userAlbums),
			AverageAlbumRating: meanAlbumRating(userAlbums),
		})
	}

	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].AverageAlbumRating != stats[j].AverageAlbumRating {
			return stats[i].AverageAlbumRating > stats[j].AverageAlbumRating
		}
		if stats[i].AlbumCount != stats[j].AlbumCount {
			return stats[i].AlbumCount > stats[j].AlbumCount
		}
		return stats[i].Username < stats[j].Username
	})

	if len(stats) > count {
		stats = stats[:count]
	}
	return stats
}

// topRated filters to rated albums and sorts by average descending. Ties
// order deterministically by newest upload, then id.
func topRated(albums []models.Album, count int) []models.Album {
	rated := make([]models.Album, 0, len(albums))
	for _, album := range albums {
		if album.Rated() {
			rated = append(rated, album)
		}
	}

	sort.SliceStable(rated, func(i, j int) bool {
		avgI, avgJ := rated[i].AverageRating(), rated[j].AverageRating()
		if avgI != avgJ {
			return avgI > avgJ
		}
		if !rated[i].UploadedAt.Equal(rated[j].UploadedAt) {
			return rated[i].UploadedAt.After(rated[j].UploadedAt)
		}
		return rated[i].ID < rated[j].ID
	})

	if len(rated) > count {
		rated = rated[:count]
	}
	return rated
}

// uploadedSince keeps the albums uploaded at or after the cutoff.
func uploadedSince(albums []models.Album, cutoff time.Time) []models.Album {
	recent := make([]models.Album, 0, len(albums))
	for _, album := range albums {
		if !album.UploadedAt.Before(cutoff) {
			recent = append(recent, album)
		}
	}
	return recent
}

// meanAlbumRating is the mean of per-album averages over rated albums, or 0
// when none are rated.
func meanAlbumRating(albums []models.Album) float64 {
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
