package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"gallery/internal/api"
)

func (s *Server) handleAdminGCBlobs(w http.ResponseWriter, r *http.Request) {
	var req api.BlobGCRequest
	if err := decodeJSON(w, r, &req); err != nil {
		if !errors.Is(err, io.EOF) {
			s.writeErrorReq(w, r, http.StatusBadRequest, classifyDecodeJSONError(err))
			return
		}
		// An empty body only reports.
		req.DryRun = true
	}
	if req.BatchSize < 0 {
		s.writeErrorReq(w, r, http.StatusBadRequest, badRequestCode(fmt.Errorf("batch_size must be >= 0"), ErrCodeInvalidArgument))
		return
	}
	if !req.DryRun && r.Header.Get("X-Confirm") != "true" {
		s.writeErrorReq(w, r, http.StatusBadRequest, badRequestCode(fmt.Errorf("non-dry-run requires X-Confirm: true header"), ErrCodeMissingRequired))
		return
	}

	result, err := s.lib.GCBlobs(r.Context(), req.BatchSize, !req.DryRun)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}
