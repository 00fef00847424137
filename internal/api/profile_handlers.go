package api

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/vytor/web3profile/internal/errors"
	"github.com/vytor/web3profile/internal/identity"
	"github.com/vytor/web3profile/internal/logger"
	"github.com/vytor/web3profile/internal/models"
	"github.com/vytor/web3profile/internal/worker"
)

type followLister func(ctx context.Context, input string, limit, offset int) ([]models.FollowEntry, error)

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	id, err := s.Profiles.Resolve(r.Context(), pathParam(r, "input"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, id)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.Profiles.Aggregate(r.Context(), pathParam(r, "input"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, p)
}

func (s *Server) handleRefreshProfile(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	input := pathParam(r, "input")

	if _, err := identity.Normalize(input); err != nil {
		handleError(w, r, errors.NewValidationError("input", err.Error()))
		return
	}
	if err := s.Jobs.EnqueueRefresh(input); err != nil {
		if stderrors.Is(err, worker.ErrQueueFull) || stderrors.Is(err, worker.ErrStopped) {
			handleError(w, r, errors.NewUnavailableError("refresh queue is busy, try again later", err))
			return
		}
		handleError(w, r, err)
		return
	}
	log.Info("refresh queued for %s", input)
	writeJSON(w, r, http.StatusAccepted, map[string]string{"status": "queued", "input": input})
}

func (s *Server) handleENS(w http.ResponseWriter, r *http.Request) {
	v, err := s.Profiles.ENS(r.Context(), pathParam(r, "input"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, v)
}

func (s *Server) handleFollowers(w http.ResponseWriter, r *http.Request) {
	s.handleFollowList(w, r, s.Profiles.Followers)
}

func (s *Server) handleFollowing(w http.ResponseWriter, r *http.Request) {
	s.handleFollowList(w, r, s.Profiles.Following)
}

func (s *Server) handleFollowList(w http.ResponseWriter, r *http.Request, list followLister) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		handleError(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		handleError(w, r, err)
		return
	}
	v, err := list(r.Context(), pathParam(r, "input"), limit, offset)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, v)
}

func (s *Server) handlePOAPs(w http.ResponseWriter, r *http.Request) {
	v, err := s.Profiles.POAPs(r.Context(), pathParam(r, "input"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, v)
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		handleError(w, r, err)
		return
	}
	v, err := s.Profiles.Transactions(r.Context(), pathParam(r, "input"), limit)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, v)
}

func (s *Server) handleNFTs(w http.ResponseWriter, r *http.Request) {
	v, err := s.Profiles.NFTs(r.Context(), pathParam(r, "input"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, v)
}

func (s *Server) handleSecurity(w http.ResponseWriter, r *http.Request) {
	v, err := s.Profiles.Security(r.Context(), pathParam(r, "input"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, v)
}

func (s *Server) handleSkills(w http.ResponseWriter, r *http.Request) {
	v, err := s.Profiles.Skills(r.Context(), pathParam(r, "input"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, v)
}

func (s *Server) handleVotes(w http.ResponseWriter, r *http.Request) {
	v, err := s.Profiles.Votes(r.Context(), pathParam(r, "input"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, v)
}

func (s *Server) handleSocials(w http.ResponseWriter, r *http.Request) {
	v, err := s.Profiles.Socials(r.Context(), pathParam(r, "input"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, v)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	p, err := s.Profiles.Aggregate(r.Context(), pathParam(r, "input"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	summary, err := s.Summaries.Summarize(r.Context(), p)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, summary)
}
