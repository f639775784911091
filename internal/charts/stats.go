package charts

import (
	"time"

	"crescendo/pkg/models"
)

// UserStats assembles the derived activity summary for one user: album and
// rating counts, distributions and last activity. Returns nil when the user
// id is unknown.
func (s *Service) UserStats(userID string) (*models.UserStats, error) {
	user, err := s.db.GetUser(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}

	albums, err := s.db.ListAlbumsForUser(userID)
	if err != nil {
		return nil, err
	}
	ratingsGiven, err := s.db.RatingsByUser(userID)
	if err != nil {
		return nil, err
	}
	commentsPosted, err := s.db.CommentsByUser(userID)
	if err != nil {
		return nil, err
	}

	stats := &models.UserStats{
		UserID:              user.ID,
		Username:            user.Username,
		AlbumCount:          len(albums),
		AverageAlbumRating:  meanAlbumRating(albums),
		TotalRatingsGiven:   len(ratingsGiven),
		TotalCommentsPosted: len(commentsPosted),
		GenreDistribution:   make(map[string]int),
		RatingDistribution:  make(map[int]int),
	}

	var last time.Time
	for _, album := range albums {
		stats.GenreDistribution[album.Genre]++
		if album.UploadedAt.After(last) {
			last = album.UploadedAt
		}
	}
	for _, rating := range ratingsGiven {
		stats.RatingDistribution[decile(rating.Value)]++
		if rating.RatedAt.After(last) {
			last = rating.RatedAt
		}
	}
	for _, comment := range commentsPosted {
		if comment.PostedAt.After(last) {
			last = comment.PostedAt
		}
	}
	if !last.IsZero() {
		stats.LastActivity = &last
	}

	return stats, nil
}

// decile buckets a rating value to its decile floor (0, 10, ... 100).
func decile(value int) int {
	return value / 10 * 10
}
