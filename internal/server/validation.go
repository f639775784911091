package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
)

// Validation bounds for album submissions. Input violating these never
// reaches the persistence gateway, which assumes pre-validated values.
const (
	maxTitleLength       = 200
	maxArtistLength      = 200
	minYear              = 1900
	maxYear              = 2100
	minDescriptionLength = 50
	maxDescriptionLength = 2000
	maxReviewLength      = 500
	minCommentLength     = 3
	maxCommentLength     = 1000
	maxURLLength         = 2048
)

// ValidationError represents a validation error with details
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// ValidationResult contains validation results
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// respondJSON writes a JSON response body.
func (as *AlbumServer) respondJSON(w http.ResponseWriter, payload interface{}) {
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		as.logger.WithError(err).Error("Failed to encode response")
	}
}

// respondWithValidationError sends a structured validation error response
func (as *AlbumServer) respondWithValidationError(w http.ResponseWriter, r *http.Request, errors []ValidationError) {
	as.logger.WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
		"errors": errors,
	}).Warn("Validation failed")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)

	result := ValidationResult{
		Valid:  false,
		Errors: errors,
	}

	as.respondJSON(w, result)
}

// respondWithError sends a structured error response
func (as *AlbumServer) respondWithError(w http.ResponseWriter, r *http.Request, statusCode int, message string, err error) {
	logEntry := as.logger.WithFields(logrus.Fields{
		"method":      r.Method,
		"path":        r.URL.Path,
		"status_code": statusCode,
		"message":     message,
	})

	if err != nil {
		logEntry = logEntry.WithError(err)
	}

	if statusCode >= 500 {
		logEntry.Error("Server error")
	} else {
		logEntry.Warn("Client error")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := map[string]interface{}{
		"error":   message,
		"code":    statusCode,
		"success": false,
	}

	as.respondJSON(w, response)
}

// albumInput is the client-supplied portion of an album submission. Owner
// identity is never part of it; that always comes from the session.
type albumInput struct {
	Title       string
	Artist      string
	Genre       string
	Year        *int
	Description string
	Links       []string
}

// validateAlbumInput checks an album submission against the boundary rules:
// required title/artist/genre, plausible year, bounded description, at
// least one valid link.
func validateAlbumInput(in albumInput) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(in.Title) == "" {
		errors = append(errors, ValidationError{
			Field:   "title",
			Message: "Album title is required",
			Code:    "MISSING_TITLE",
		})
	} else if len(in.Title) > maxTitleLength {
		errors = append(errors, ValidationError{
			Field:   "title",
			Message: fmt.Sprintf("Title too long (max %d characters)", maxTitleLength),
			Code:    "TITLE_TOO_LONG",
		})
	}

	if strings.TrimSpace(in.Artist) == "" {
		errors = append(errors, ValidationError{
			Field:   "artist",
			Message: "Artist is required",
			Code:    "MISSING_ARTIST",
		})
	} else if len(in.Artist) > maxArtistLength {
		errors = append(errors, ValidationError{
			Field:   "artist",
			Message: fmt.Sprintf("Artist too long (max %d characters)", maxArtistLength),
			Code:    "ARTIST_TOO_LONG",
		})
	}

	if strings.TrimSpace(in.Genre) == "" {
		errors = append(errors, ValidationError{
			Field:   "genre",
			Message: "Genre is required",
			Code:    "MISSING_GENRE",
		})
	}

	if in.Year != nil && (*in.Year < minYear || *in.Year > maxYear) {
		errors = append(errors, ValidationError{
			Field:   "year",
			Message: fmt.Sprintf("Year must be between %d and %d", minYear, maxYear),
			Code:    "INVALID_YEAR",
		})
	}

	if length := len(strings.TrimSpace(in.Description)); length < minDescriptionLength {
		errors = append(errors, ValidationError{
			Field:   "description",
			Message: fmt.Sprintf("Description must be at least %d characters", minDescriptionLength),
			Code:    "DESCRIPTION_TOO_SHORT",
		})
	} else if length > maxDescriptionLength {
		errors = append(errors, ValidationError{
			Field:   "description",
			Message: fmt.Sprintf("Description cannot exceed %d characters", maxDescriptionLength),
			Code:    "DESCRIPTION_TOO_LONG",
		})
	}

	if len(in.Links) == 0 {
		errors = append(errors, ValidationError{
			Field:   "links",
			Message: "You must provide at least one link",
			Code:    "MISSING_LINKS",
		})
	}
	for _, link := range in.Links {
		if linkErr := validateLinkURL(link); linkErr != nil {
			errors = append(errors, *linkErr)
		}
	}

	return errors
}

// validateLinkURL validates one external album link
func validateLinkURL(urlStr string) *ValidationError {
	if urlStr == "" {
		return &ValidationError{
			Field:   "links",
			Message: "Link URL is required",
			Code:    "MISSING_URL",
		}
	}

	if len(urlStr) > maxURLLength {
		return &ValidationError{
			Field:   "links",
			Message: fmt.Sprintf("URL too long (max %d characters)", maxURLLength),
			Code:    "URL_TOO_LONG",
		}
	}

	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return &ValidationError{
			Field:   "links",
			Message: "Invalid URL format",
			Code:    "INVALID_URL_FORMAT",
		}
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return &ValidationError{
			Field:   "links",
			Message: "URL must use HTTP or HTTPS protocol",
			Code:    "INVALID_URL_PROTOCOL",
		}
	}
	if parsedURL.Host == "" {
		return &ValidationError{
			Field:   "links",
			Message: "URL must include a host",
			Code:    "INVALID_URL_HOST",
		}
	}

	return nil
}

// validateRatingValue validates a rating submission against the [0,100]
// domain and the review bound.
func validateRatingValue(value int, review string) []ValidationError {
	var errors []ValidationError

	if value < 0 || value > 100 {
		errors = append(errors, ValidationError{
			Field:   "value",
			Message: "Rating must be between 0 and 100",
			Code:    "INVALID_RATING_VALUE",
		})
	}

	if len(review) > maxReviewLength {
		errors = append(errors, ValidationError{
			Field:   "review",
			Message: fmt.Sprintf("Review too long (max %d characters)", maxReviewLength),
			Code:    "REVIEW_TOO_LONG",
		})
	}

	return errors
}

// validateCommentContent validates comment and reply text.
func validateCommentContent(content string) *ValidationError {
	trimmed := strings.TrimSpace(content)
	if len(trimmed) < minCommentLength {
		return &ValidationError{
			Field:   "content",
			Message: fmt.Sprintf("Comment must be at least %d characters", minCommentLength),
			Code:    "COMMENT_TOO_SHORT",
		}
	}
	if len(trimmed) > maxCommentLength {
		return &ValidationError{
			Field:   "content",
			Message: fmt.Sprintf("Comment cannot exceed %d characters", maxCommentLength),
			Code:    "COMMENT_TOO_LONG",
		}
	}
	return nil
}

// sanitizeInput sanitizes user input to prevent injection attacks
func sanitizeInput(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Trim whitespace
	input = strings.TrimSpace(input)

	return input
}
