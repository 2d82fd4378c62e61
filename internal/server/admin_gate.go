package server

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const adminTokenHeader = "X-Admin-Token"

// admin guards mutating handlers. Requests pass with a matching bearer or
// X-Admin-Token header, or with basic credentials that verify against the
// configured bcrypt hash. With no credentials configured every request
// passes.
func (s *Server) admin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.credentials.Enabled() {
			next(w, r)
			return
		}

		now := time.Now().UTC()
		client := adminClientKey(r)
		if wait := s.adminFailures.retryAfter(client, now); wait > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			s.writeErrorReq(w, r, http.StatusTooManyRequests, apiError{
				status:  http.StatusTooManyRequests,
				code:    "resource_exhausted",
				errCode: ErrCodeResourceExhausted,
				err:     fmt.Errorf("too many failed admin attempts; retry later"),
			})
			return
		}

		token := adminTokenFromRequest(r)
		username, password, hasBasic := r.BasicAuth()
		if token == "" && !hasBasic {
			w.Header().Set("WWW-Authenticate", `Basic realm="gallery"`)
			s.writeErrorReq(w, r, http.StatusUnauthorized, apiError{
				status:  http.StatusUnauthorized,
				code:    "unauthorized",
				errCode: ErrCodeUnauthorized,
				err:     fmt.Errorf("admin credentials required"),
			})
			return
		}

		if s.credentials.CheckToken(token) || (hasBasic && s.credentials.CheckPassword(username, password)) {
			s.adminFailures.clear(client)
			next(w, r)
			return
		}

		if s.adminFailures.fail(client, now) {
			s.log().Warn("admin client blocked after repeated failures", "client", client, "cooldown", adminBlockDuration)
		}
		s.writeErrorReq(w, r, http.StatusForbidden, apiError{
			status:  http.StatusForbidden,
			code:    "forbidden",
			errCode: ErrCodeForbidden,
			err:     fmt.Errorf("invalid admin credentials"),
		})
	}
}

func adminTokenFromRequest(r *http.Request) string {
	if token := strings.TrimSpace(r.Header.Get(adminTokenHeader)); token != "" {
		return token
	}
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) > len("Bearer ") && strings.EqualFold(header[:len("Bearer ")], "Bearer ") {
		return strings.TrimSpace(header[len("Bearer "):])
	}
	return ""
}
