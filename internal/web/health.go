package web

import "net/http"

type healthResult struct {
	Status string `json:"status"`
}

// handleHealthz is a liveness probe that always returns 200 OK.
func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResult{Status: "ok"})
}

// handleReadyz returns 200 once the server has started listening.
func (s *Server) handleReadyz(w http.ResponseWriter, _ *http.Request) {
	if !s.ready.Load() {
		writeJSON(w, http.StatusServiceUnavailable, healthResult{Status: "fail"})
		return
	}
	writeJSON(w, http.StatusOK, healthResult{Status: "ok"})
}
