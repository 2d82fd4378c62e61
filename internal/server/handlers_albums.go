package server

import (
	"fmt"
	"net/http"
	"time"

	"gallery/internal/api"
	"gallery/internal/library"
	"gallery/internal/models"
)

func (s *Server) handleListAlbums(w http.ResponseWriter, r *http.Request) {
	sortBy, err := normalizeAlbumSort(r.URL.Query().Get("sort"))
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, err)
		return
	}
	albums, err := s.lib.ListAlbumsSorted(r.Context(), sortBy)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if albums == nil {
		albums = []models.Album{}
	}
	s.writeJSON(w, http.StatusOK, albums)
}

func (s *Server) handleCreateAlbum(w http.ResponseWriter, r *http.Request) {
	var req api.AlbumCreateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	album, err := s.lib.CreateAlbum(r.Context(), req.Name, req.Description)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, album)
}

func (s *Server) handleGetAlbum(w http.ResponseWriter, r *http.Request) {
	id, ok := s.albumIDOrBadRequest(w, r)
	if !ok {
		return
	}

	album, ok := s.albumOrNotFound(w, r, id)
	if !ok {
		return
	}
	media, err := s.lib.GetAlbumMedia(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if media == nil {
		media = []models.MediaItem{}
	}
	s.writeJSON(w, http.StatusOK, api.AlbumDetailResponse{Album: *album, Media: media})
}

func (s *Server) handleUpdateAlbum(w http.ResponseWriter, r *http.Request) {
	id, ok := s.albumIDOrBadRequest(w, r)
	if !ok {
		return
	}

	var req api.AlbumUpdateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}
	update := models.AlbumUpdate{Name: req.Name, Description: req.Description}
	if err := validateAlbumUpdate(update); err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, err)
		return
	}

	album, err := s.lib.UpdateAlbum(r.Context(), id, update)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if album == nil {
		s.writeErrorReq(w, r, http.StatusNotFound, notFoundCode(fmt.Errorf("album not found"), ErrCodeAlbumNotFound))
		return
	}
	s.writeJSON(w, http.StatusOK, album)
}

func (s *Server) handleDeleteAlbum(w http.ResponseWriter, r *http.Request) {
	id, ok := s.albumIDOrBadRequest(w, r)
	if !ok {
		return
	}
	if err := s.lib.DeleteAlbum(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"id": id})
}

func (s *Server) handleAlbumView(w http.ResponseWriter, r *http.Request) {
	id, ok := s.albumIDOrBadRequest(w, r)
	if !ok {
		return
	}
	if err := s.lib.IncrementAlbumViews(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	album, ok := s.albumOrNotFound(w, r, id)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, album)
}

func (s *Server) handleRecountAlbum(w http.ResponseWriter, r *http.Request) {
	id, ok := s.albumIDOrBadRequest(w, r)
	if !ok {
		return
	}
	album, err := s.lib.RecountAlbum(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if album == nil {
		s.writeErrorReq(w, r, http.StatusNotFound, notFoundCode(fmt.Errorf("album not found"), ErrCodeAlbumNotFound))
		return
	}
	s.writeJSON(w, http.StatusOK, album)
}

func (s *Server) handleGetAlbumCover(w http.ResponseWriter, r *http.Request) {
	id, ok := s.albumIDOrBadRequest(w, r)
	if !ok {
		return
	}
	content, err := s.lib.OpenAlbumCover(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeContent(w, r, content, "inline")
}

func (s *Server) handleSetAlbumCover(w http.ResponseWriter, r *http.Request) {
	id, ok := s.albumIDOrBadRequest(w, r)
	if !ok {
		return
	}

	var req api.AlbumCoverRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	album, err := s.lib.SetAlbumCover(r.Context(), id, req.MediaID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, album)
}

func (s *Server) handleExportAlbum(w http.ResponseWriter, r *http.Request) {
	id, ok := s.albumIDOrBadRequest(w, r)
	if !ok {
		return
	}

	s.withLimiter(w, r, s.exportLimiter, "export", func() {
		album, ok := s.albumOrNotFound(w, r, id)
		if !ok {
			return
		}

		filename := library.ExportFilename(album.Name, time.Now().UTC())
		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
		w.WriteHeader(http.StatusOK)

		count, err := s.lib.ExportAlbum(r.Context(), id, w)
		if err != nil {
			// Headers are already sent; the truncated archive is the only signal.
			s.log().Error("album export failed", "album_id", id, "written", count, "error_code", ErrCodeExportFailed, "error", err)
			return
		}
		s.log().Debug("album exported", "album_id", id, "media", count)
	})
}

func (s *Server) albumOrNotFound(w http.ResponseWriter, r *http.Request, id string) (*models.Album, bool) {
	album, err := s.lib.GetAlbum(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return nil, false
	}
	if album == nil {
		s.writeErrorReq(w, r, http.StatusNotFound, notFoundCode(fmt.Errorf("album not found"), ErrCodeAlbumNotFound))
		return nil, false
	}
	return album, true
}
