package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(loggingMiddleware)
	r.Use(recoveryMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		if s.RequestTimeout > 0 {
			r.Use(timeoutMiddleware(s.RequestTimeout))
		}

		r.Get("/resolve/{input}", s.handleResolve)

		r.Route("/profiles/{input}", func(r chi.Router) {
			r.Get("/", s.handleProfile)
			r.Post("/refresh", s.handleRefreshProfile)
			r.Get("/ens", s.handleENS)
			r.Get("/followers", s.handleFollowers)
			r.Get("/following", s.handleFollowing)
			r.Get("/poaps", s.handlePOAPs)
			r.Get("/transactions", s.handleTransactions)
			r.Get("/nfts", s.handleNFTs)
			r.Get("/security", s.handleSecurity)
			r.Get("/skills", s.handleSkills)
			r.Get("/votes", s.handleVotes)
			r.Get("/socials", s.handleSocials)
			r.Get("/summary", s.handleSummary)
		})

		r.Post("/proxy/{service}", s.handleProxy)

		r.Get("/searches/recent", s.handleRecentSearches)
		r.Get("/searches/popular", s.handlePopularSearches)
		r.Delete("/searches/{id}", s.handleDeleteSearch)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "NOT_FOUND", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	})
	return r
}
