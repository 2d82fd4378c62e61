package server

import (
	"net/http"
	"strings"
	"time"

	"gallery/internal/api"
	"gallery/internal/models"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	resp := api.InfoResponse{
		LibraryPath:       s.libraryPath,
		MaxUploadBytes:    s.lib.MaxUploadBytes(),
		AllowedMediaTypes: s.lib.AllowedMediaTypes(),
		ServerTime:        time.Now().UTC(),
	}
	if s.info != nil {
		info, err := s.info.StoreInfo(r.Context())
		if err != nil {
			s.writeErrorReq(w, r, http.StatusInternalServerError, internalError(err))
			return
		}
		resp.SchemaVersion = info.SchemaVersion
		resp.TotalAlbums = info.TotalAlbums
		resp.TotalMedia = info.TotalMedia
		resp.MediaCounts = info.MediaCounts
		resp.TotalBlobs = info.TotalBlobs
		resp.BlobBytes = info.BlobBytes
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.lib.GetStorageStats(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := s.lib.GetDashboard(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if dashboard.Recent == nil {
		dashboard.Recent = []models.MediaItem{}
	}
	s.writeJSON(w, http.StatusOK, dashboard)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	s.withLimiter(w, r, s.searchLimiter, "search", func() {
		results, err := s.lib.SearchMedia(r.Context(), query)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		if results == nil {
			results = []models.MediaItem{}
		}
		s.writeJSON(w, http.StatusOK, api.SearchResponse{Query: query, Results: results})
	})
}
