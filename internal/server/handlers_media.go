package server

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"gallery/internal/api"
	"gallery/internal/library"
	"gallery/internal/models"
)

const (
	maxFilesPerUpload  = 32
	multipartOverhead  = 1 << 20 // 1 MiB
	sniffLen           = 512
	octetStreamMIME    = "application/octet-stream"
	contentDisposition = "attachment"
)

func (s *Server) handleListAlbumMedia(w http.ResponseWriter, r *http.Request) {
	id, ok := s.albumIDOrBadRequest(w, r)
	if !ok {
		return
	}
	mediaType, err := normalizeMediaTypeFilter(r.URL.Query().Get("type"))
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, err)
		return
	}
	if _, ok := s.albumOrNotFound(w, r, id); !ok {
		return
	}
	media, err := s.lib.GetAlbumMediaByType(r.Context(), id, mediaType)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if media == nil {
		media = []models.MediaItem{}
	}
	s.writeJSON(w, http.StatusOK, media)
}

func (s *Server) handleUploadMedia(w http.ResponseWriter, r *http.Request) {
	albumID, ok := s.albumIDOrBadRequest(w, r)
	if !ok {
		return
	}

	s.withLimiter(w, r, s.uploadLimiter, "upload", func() {
		if _, ok := s.albumOrNotFound(w, r, albumID); !ok {
			return
		}

		maxBody := s.lib.MaxUploadBytes()*maxFilesPerUpload + multipartOverhead
		r.Body = http.MaxBytesReader(w, r.Body, maxBody)
		if err := r.ParseMultipartForm(s.multipartMemory); err != nil {
			err = classifyMultipartError(err)
			s.writeErrorReq(w, r, httpStatusFromError(err), err)
			return
		}
		defer func() {
			if err := r.MultipartForm.RemoveAll(); err != nil {
				s.log().Warn("remove multipart temp files", "error", err)
			}
		}()

		files := r.MultipartForm.File["content"]
		if len(files) == 0 {
			s.writeErrorReq(w, r, http.StatusBadRequest, badRequestCode(fmt.Errorf("content is required"), ErrCodeMissingRequired))
			return
		}
		if len(files) > maxFilesPerUpload {
			s.writeErrorReq(w, r, http.StatusBadRequest, badRequestCode(fmt.Errorf("at most %d files per request", maxFilesPerUpload), ErrCodeInvalidArgument))
			return
		}

		queue := library.NewUploadQueue(s.lib, albumID)
		for _, fh := range files {
			if _, err := queue.Enqueue(uploadFromPart(fh)); err != nil {
				s.writeErrorReq(w, r, http.StatusInternalServerError, internalError(err))
				return
			}
		}

		runErr := queue.Run(r.Context(), func(p models.UploadProgress) {
			s.log().Debug("upload progress", "album_id", albumID, "completed", p.Completed, "total", p.Total, "status", p.Item.Status)
		})
		if runErr != nil {
			s.writeServiceError(w, r, runErr)
			return
		}

		resp := api.UploadResponse{AlbumID: albumID, Items: queue.Items(), Media: []models.MediaItem{}}
		var firstErr error
		for _, item := range resp.Items {
			if item.Status != models.UploadCompleted {
				resp.Failed++
				if firstErr == nil {
					firstErr = queue.Err(item.ID)
				}
				continue
			}
			resp.Completed++
			media, err := s.lib.GetMediaItem(r.Context(), item.MediaID)
			if err != nil {
				s.writeServiceError(w, r, err)
				return
			}
			if media != nil {
				resp.Media = append(resp.Media, *media)
			}
		}
		if resp.Completed == 0 && firstErr != nil {
			s.writeServiceError(w, r, firstErr)
			return
		}
		s.writeJSON(w, http.StatusCreated, resp)
	})
}

func (s *Server) handleListMedia(w http.ResponseWriter, r *http.Request) {
	mediaType, err := normalizeMediaTypeFilter(r.URL.Query().Get("type"))
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, err)
		return
	}

	var media []models.MediaItem
	if mediaType == "" {
		media, err = s.lib.GetAllMedia(r.Context())
	} else {
		media, err = s.lib.GetMediaByType(r.Context(), mediaType)
	}
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if media == nil {
		media = []models.MediaItem{}
	}
	s.writeJSON(w, http.StatusOK, media)
}

func (s *Server) handleGetMedia(w http.ResponseWriter, r *http.Request) {
	id, ok := s.mediaIDOrBadRequest(w, r)
	if !ok {
		return
	}
	item, err := s.lib.GetMediaItem(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if item == nil {
		s.writeErrorReq(w, r, http.StatusNotFound, notFoundCode(fmt.Errorf("media not found"), ErrCodeMediaNotFound))
		return
	}
	s.writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleDeleteMedia(w http.ResponseWriter, r *http.Request) {
	id, ok := s.mediaIDOrBadRequest(w, r)
	if !ok {
		return
	}
	if err := s.lib.DeleteMedia(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"id": id})
}

func (s *Server) handleGetMediaContent(w http.ResponseWriter, r *http.Request) {
	id, ok := s.mediaIDOrBadRequest(w, r)
	if !ok {
		return
	}
	inline, err := queryBool(r, "inline")
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, err)
		return
	}

	content, err := s.lib.DownloadMedia(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	disposition := contentDisposition
	if inline {
		disposition = "inline"
	}
	s.writeContent(w, r, content, disposition)
}

func (s *Server) handleGetMediaThumbnail(w http.ResponseWriter, r *http.Request) {
	id, ok := s.mediaIDOrBadRequest(w, r)
	if !ok {
		return
	}
	content, err := s.lib.OpenThumbnail(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeContent(w, r, content, "inline")
}

// uploadFromPart turns one multipart file into a re-openable upload. The
// part's declared Content-Type wins unless it is missing or generic, in
// which case the leading bytes are sniffed.
func uploadFromPart(fh *multipart.FileHeader) models.Upload {
	return models.Upload{
		Filename: fh.Filename,
		MimeType: partMediaType(fh),
		Size:     fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

func partMediaType(fh *multipart.FileHeader) string {
	declared := models.NormalizeMIME(fh.Header.Get("Content-Type"))
	if declared != "" && declared != octetStreamMIME {
		return declared
	}
	f, err := fh.Open()
	if err != nil {
		return declared
	}
	defer f.Close()
	head := make([]byte, sniffLen)
	n, _ := io.ReadFull(f, head)
	return models.NormalizeMIME(http.DetectContentType(head[:n]))
}

func classifyMultipartError(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(strings.ToLower(err.Error()), "request body too large") {
		return makeAPIError(http.StatusRequestEntityTooLarge, "too_large", ErrCodeRequestTooLarge, fmt.Errorf("request body too large"))
	}
	return badRequestCode(err, ErrCodeInvalidArgument)
}
