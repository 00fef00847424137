package api

import (
	"net/http"
	"strconv"

	"github.com/vytor/web3profile/internal/errors"
)

func (s *Server) handleRecentSearches(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 20)
	if err != nil {
		handleError(w, r, err)
		return
	}
	entries, err := s.Searches.Recent(r.Context(), limit)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, entries)
}

func (s *Server) handlePopularSearches(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 20)
	if err != nil {
		handleError(w, r, err)
		return
	}
	entries, err := s.Searches.Popular(r.Context(), limit)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, entries)
}

func (s *Server) handleDeleteSearch(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(pathParam(r, "id"), 10, 64)
	if err != nil {
		handleError(w, r, errors.NewValidationError("id", "must be an integer"))
		return
	}
	if err := s.Searches.Delete(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
