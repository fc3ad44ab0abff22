package api

import "net/http"

// handleJob handles GET /jobs/{job_id}.
func (s *Server) handleJob(w http.ResponseWriter, r *http.Request) {
	st, err := s.deps.Job(r.Context(), r.PathValue("job_id"))
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
