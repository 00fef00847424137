package api

import (
	"net/http"

	"github.com/vytor/web3profile/internal/services"
)

// handleProxy relays an allow-listed upstream call and returns its status and
// body unchanged.
func (s *Server) handleProxy(w http.ResponseWriter, r *http.Request) {
	var req services.ProxyRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	resp, err := s.Proxy.Forward(r.Context(), pathParam(r, "service"), req)
	if err != nil {
		handleError(w, r, err)
		return
	}

	contentType := resp.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(resp.Body)
}
