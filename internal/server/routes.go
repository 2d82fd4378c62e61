package server

import (
	"net/http"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// Health check and info.
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /v1/info", s.handleInfo)
	mux.HandleFunc("GET /v1/stats", s.handleStats)
	mux.HandleFunc("GET /v1/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /v1/search", s.handleSearch)

	// Albums collection.
	mux.HandleFunc("GET /v1/albums", s.handleListAlbums)
	mux.HandleFunc("POST /v1/albums", s.admin(s.handleCreateAlbum))

	// Single album.
	mux.HandleFunc("GET /v1/albums/{id}", s.handleGetAlbum)
	mux.HandleFunc("PATCH /v1/albums/{id}", s.admin(s.handleUpdateAlbum))
	mux.HandleFunc("DELETE /v1/albums/{id}", s.admin(s.handleDeleteAlbum))
	mux.HandleFunc("POST /v1/albums/{id}/views", s.handleAlbumView)
	mux.HandleFunc("POST /v1/albums/{id}/recount", s.admin(s.handleRecountAlbum))
	mux.HandleFunc("GET /v1/albums/{id}/cover", s.handleGetAlbumCover)
	mux.HandleFunc("PUT /v1/albums/{id}/cover", s.admin(s.handleSetAlbumCover))
	mux.HandleFunc("GET /v1/albums/{id}/export", s.handleExportAlbum)

	// Album media.
	mux.HandleFunc("GET /v1/albums/{id}/media", s.handleListAlbumMedia)
	mux.HandleFunc("POST /v1/albums/{id}/media", s.admin(s.handleUploadMedia))

	// Media.
	mux.HandleFunc("GET /v1/media", s.handleListMedia)
	mux.HandleFunc("GET /v1/media/{id}", s.handleGetMedia)
	mux.HandleFunc("DELETE /v1/media/{id}", s.admin(s.handleDeleteMedia))
	mux.HandleFunc("GET /v1/media/{id}/content", s.handleGetMediaContent)
	mux.HandleFunc("GET /v1/media/{id}/thumbnail", s.handleGetMediaThumbnail)

	// Admin.
	mux.HandleFunc("POST /v1/admin/gc", s.admin(s.handleAdminGCBlobs))

	return mux
}
