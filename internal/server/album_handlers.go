package server

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"crescendo/pkg/models"
)

// albumView decorates an album with its derived rating fields for JSON
// responses.
type albumView struct {
	*models.Album
	AverageRating float64 `json:"averageRating"`
	DisplayRating string  `json:"displayRating"`
	HasImage      bool    `json:"hasImage"`
}

func newAlbumView(album *models.Album) albumView {
	return albumView{
		Album:         album,
		AverageRating: album.AverageRating(),
		DisplayRating: album.DisplayRating(),
		HasImage:      album.HasImage(),
	}
}

func albumViews(albums []models.Album) []albumView {
	views := make([]albumView, 0, len(albums))
	for i := range albums {
		views = append(views, newAlbumView(&albums[i]))
	}
	return views
}

// handleAlbums serves the album collection: GET lists all albums, POST
// creates one from a multipart submission.
func (as *AlbumServer) handleAlbums(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		as.handleListAlbums(w, r)
	case http.MethodPost:
		as.handleCreateAlbum(w, r)
	default:
		as.respondWithError(w, r, http.StatusMethodNotAllowed, "Method not allowed", nil)
	}
}

// handleAlbumSubtree dispatches /api/albums/{id}[/...] requests.
func (as *AlbumServer) handleAlbumSubtree(w http.ResponseWriter, r *http.Request) {
	pathParts := strings.Split(r.URL.Path, "/")
	// /api/albums/{id} -> ["", "api", "albums", id, ...]
	if len(pathParts) < 4 || pathParts[3] == "" {
		as.respondWithError(w, r, http.StatusBadRequest, "Album ID is required", nil)
		return
	}
	albumID := pathParts[3]

	if len(pathParts) == 4 {
		switch r.Method {
		case http.MethodGet:
			as.handleGetAlbum(w, r, albumID)
		case http.MethodPut:
			as.handleUpdateAlbum(w, r, albumID)
		case http.MethodDelete:
			as.handleDeleteAlbum(w, r, albumID)
		default:
			as.respondWithError(w, r, http.StatusMethodNotAllowed, "Method not allowed", nil)
		}
		return
	}

	switch pathParts[4] {
	case "cover":
		as.handleAlbumCover(w, r, albumID)
	case "ratings":
		as.handleAlbumRatings(w, r, albumID)
	case "comments":
		as.handleAlbumComments(w, r, albumID, pathParts)
	default:
		as.respondWithError(w, r, http.StatusNotFound, "Not found", nil)
	}
}

func (as *AlbumServer) handleListAlbums(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var albums []models.Album
	var err error

	if userID := r.URL.Query().Get("user"); userID != "" {
		albums, err = as.db.ListAlbumsForUser(userID)
	} else {
		albums, err = as.db.ListAlbums()
	}
	if err != nil {
		as.respondWithError(w, r, http.StatusInternalServerError, "Error retrieving albums", err)
		return
	}

	as.respondJSON(w, albumViews(albums))
}

func (as *AlbumServer) handleGetAlbum(w http.ResponseWriter, r *http.Request, albumID string) {
	album, err := as.db.GetAlbum(albumID)
	if err != nil {
		as.respondWithError(w, r, http.StatusInternalServerError, "Error retrieving album", err)
		return
	}
	if album == nil {
		as.respondWithError(w, r, http.StatusNotFound, "Album not found", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	as.respondJSON(w, newAlbumView(album))
}

func (as *AlbumServer) handleCreateAlbum(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r)
	if session == nil {
		as.respondWithError(w, r, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	album, validationErrors, err := as.parseAlbumForm(r)
	if err != nil {
		as.respondWithError(w, r, http.StatusBadRequest, "Failed to parse album form", err)
		return
	}
	if len(validationErrors) > 0 {
		as.respondWithValidationError(w, r, validationErrors)
		return
	}

	if err := as.db.CreateAlbum(album, session.UserID, session.Username); err != nil {
		as.respondWithError(w, r, http.StatusInternalServerError, "Error creating album", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	as.respondJSON(w, newAlbumView(album))
}

func (as *AlbumServer) handleUpdateAlbum(w http.ResponseWriter, r *http.Request, albumID string) {
	session := sessionFromContext(r)
	if session == nil {
		as.respondWithError(w, r, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	existing, err := as.db.GetAlbum(albumID)
	if err != nil {
		as.respondWithError(w, r, http.StatusInternalServerError, "Error retrieving album", err)
		return
	}
	if existing == nil {
		as.respondWithError(w, r, http.StatusNotFound, "Album not found", nil)
		return
	}
	if existing.UserID != session.UserID {
		as.respondWithError(w, r, http.StatusForbidden, "Only the album owner can edit it", nil)
		return
	}

	album, validationErrors, err := as.parseAlbumForm(r)
	if err != nil {
		as.respondWithError(w, r, http.StatusBadRequest, "Failed to parse album form", err)
		return
	}
	if len(validationErrors) > 0 {
		as.respondWithValidationError(w, r, validationErrors)
		return
	}
	album.ID = albumID

	found, err := as.db.UpdateAlbum(album)
	if err != nil {
		as.respondWithError(w, r, http.StatusInternalServerError, "Error updating album", err)
		return
	}
	if !found {
		as.respondWithError(w, r, http.StatusNotFound, "Album not found", nil)
		return
	}

	updated, err := as.db.GetAlbum(albumID)
	if err != nil || updated == nil {
		as.respondWithError(w, r, http.StatusInternalServerError, "Error retrieving updated album", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	as.respondJSON(w, newAlbumView(updated))
}

func (as *AlbumServer) handleDeleteAlbum(w http.ResponseWriter, r *http.Request, albumID string) {
	session := sessionFromContext(r)
	if session == nil {
		as.respondWithError(w, r, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	existing, err := as.db.GetAlbum(albumID)
	if err != nil {
		as.respondWithError(w, r, http.StatusInternalServerError, "Error retrieving album", err)
		return
	}
	if existing == nil {
		as.respondWithError(w, r, http.StatusNotFound, "Album not found", nil)
		return
	}
	if existing.UserID != session.UserID {
		as.respondWithError(w, r, http.StatusForbidden, "Only the album owner can delete it", nil)
		return
	}

	deleted, err := as.db.DeleteAlbum(albumID)
	if err != nil {
		as.respondWithError(w, r, http.StatusInternalServerError, "Error deleting album", err)
		return
	}
	if !deleted {
		as.respondWithError(w, r, http.StatusNotFound, "Album not found", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	as.respondJSON(w, map[string]bool{"success": true})
}

// handleAlbumCover serves the stored cover image bytes.
func (as *AlbumServer) handleAlbumCover(w http.ResponseWriter, r *http.Request, albumID string) {
	if r.Method != http.MethodGet {
		as.respondWithError(w, r, http.StatusMethodNotAllowed, "Method not allowed", nil)
		return
	}

	album, err := as.db.GetAlbum(albumID)
	if err != nil {
		as.respondWithError(w, r, http.StatusInternalServerError, "Error retrieving album", err)
		return
	}
	if album == nil || !album.HasImage() {
		as.respondWithError(w, r, http.StatusNotFound, "Cover image not found", nil)
		return
	}

	contentType := album.ImageContentType
	if contentType == "" {
		contentType = http.DetectContentType(album.Image)
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=3600") // Cache for 1 hour
	w.Write(album.Image)
}

// parseAlbumForm reads a multipart album submission: metadata fields, a
// repeated "links" field and an optional "cover" image file.
func (as *AlbumServer) parseAlbumForm(r *http.Request) (*models.Album, []ValidationError, error) {
	maxSize := as.config.MaxImageSizeBytes()
	if err := r.ParseMultipartForm(maxSize); err != nil {
		return nil, nil, err
	}

	input := albumInput{
		Title:       sanitizeInput(r.FormValue("title")),
		Artist:      sanitizeInput(r.FormValue("artist")),
		Genre:       sanitizeInput(r.FormValue("genre")),
		Description: sanitizeInput(r.FormValue("description")),
	}
	if r.MultipartForm != nil {
		for _, link := range r.MultipartForm.Value["links"] {
			input.Links = append(input.Links, sanitizeInput(link))
		}
	}

	var validationErrors []ValidationError
	if yearStr := sanitizeInput(r.FormValue("year")); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			validationErrors = append(validationErrors, ValidationError{
				Field:   "year",
				Message: "Year must be a valid integer",
				Code:    "INVALID_YEAR_FORMAT",
			})
		} else {
			input.Year = &year
		}
	}

	validationErrors = append(validationErrors, validateAlbumInput(input)...)

	album := &models.Album{
		Title:       input.Title,
		Artist:      input.Artist,
		Genre:       input.Genre,
		Year:        input.Year,
		Description: input.Description,
	}
	for _, link := range input.Links {
		album.Links = append(album.Links, models.AlbumLink{URL: link})
	}

	// Cover image is optional
	file, _, err := r.FormFile("cover")
	if err == nil {
		defer file.Close()
		data, readErr := io.ReadAll(io.LimitReader(file, maxSize))
		if readErr != nil {
			return nil, nil, readErr
		}
		if len(data) > 0 {
			contentType := http.DetectContentType(data)
			if !strings.HasPrefix(contentType, "image/") {
				validationErrors = append(validationErrors, ValidationError{
					Field:   "cover",
					Message: "Cover must be an image file",
					Code:    "INVALID_COVER_TYPE",
				})
			} else {
				album.Image = data
				album.ImageContentType = contentType
			}
		}
	}

	return album, validationErrors, nil
}
