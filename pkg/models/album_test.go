package models

import "testing"

func TestAverageRating(t *testing.T) {
	t.Run("NoRatings", func(t *testing.T) {
		album := Album{Title: "Silence"}

		if avg := album.AverageRating(); avg != Unrated {
			t.Errorf("Expected unrated sentinel %v, got %v", Unrated, avg)
		}
		if album.Rated() {
			t.Error("Expected album without ratings to report Rated() == false")
		}
		if display := album.DisplayRating(); display != "Not rated" {
			t.Errorf("Expected 'Not rated', got %q", display)
		}
	})

	t.Run("MeanOfValues", func(t *testing.T) {
		album := Album{
			Ratings: []Rating{
				{Value: 80},
				{Value: 40},
				{Value: 90},
			},
		}

		if avg := album.AverageRating(); avg != 70 {
			t.Errorf("Expected average 70, got %v", avg)
		}
		if display := album.DisplayRating(); display != "70.0" {
			t.Errorf("Expected '70.0', got %q", display)
		}
	})

	t.Run("OneDecimalFormatting", func(t *testing.T) {
		album := Album{
			Ratings: []Rating{
				{Value: 85},
				{Value: 80},
			},
		}

		if display := album.DisplayRating(); display != "82.5" {
			t.Errorf("Expected '82.5', got %q", display)
		}
	})

	t.Run("ZeroAverageIsNotUnrated", func(t *testing.T) {
		album := Album{Ratings: []Rating{{Value: 0}}}

		if avg := album.AverageRating(); avg != 0 {
			t.Errorf("Expected average 0, got %v", avg)
		}
		if display := album.DisplayRating(); display != "0.0" {
			t.Errorf("Expected '0.0', got %q", display)
		}
	})
}

func TestCommentResponded(t *testing.T) {
	comment := Comment{Content: "great pick"}
	if comment.Responded() {
		t.Error("Expected new comment to have no owner response")
	}

	response := "thanks!"
	comment.OwnerResponse = &response
	if !comment.Responded() {
		t.Error("Expected comment with owner response to report Responded()")
	}
}
