package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/practice-tracker/internal/apperror"
	"github.com/sakif/practice-tracker/internal/model"
)

// RecommendService is implemented by *service.RecommendService.
type RecommendService interface {
	ByTagAndTier(ctx context.Context, tag string, tier int) ([]model.Problem, error)
	ForUser(ctx context.Context, tag string) ([]model.Problem, error)
	LookupProfile(ctx context.Context, handle string) (*model.Profile, error)
}

// RecommendHandler serves problem recommendations and ranking lookups.
type RecommendHandler struct {
	recommend RecommendService
	logger    *slog.Logger
}

func NewRecommendHandler(recommend RecommendService, logger *slog.Logger) *RecommendHandler {
	return &RecommendHandler{recommend: recommend, logger: logger}
}

type profileResponse struct {
	*model.Profile
	TierName string `json:"tierName"`
}

// HandleRecommend is the anonymous recommendation.
//
// HTTP: GET /api/recommendations?tag=dp&tier=10
func (h *RecommendHandler) HandleRecommend(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	tier, err := strconv.Atoi(q.Get("tier"))
	if err != nil {
		writeError(w, h.logger, r, apperror.InvalidArgument("tier", "tier must be an integer"))
		return
	}

	problems, err := h.recommend.ByTagAndTier(r.Context(), q.Get("tag"), tier)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	writeJSON(w, http.StatusOK, problems)
}

// HandleMyRecommendations recommends around the caller's stored tier.
//
// HTTP: GET /api/me/recommendations?tag=dp
func (h *RecommendHandler) HandleMyRecommendations(w http.ResponseWriter, r *http.Request) {
	problems, err := h.recommend.ForUser(r.Context(), r.URL.Query().Get("tag"))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	writeJSON(w, http.StatusOK, problems)
}

// HandleProfile proxies a ranking profile lookup.
//
// HTTP: GET /api/oracle/users/{handle}
func (h *RecommendHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.recommend.LookupProfile(r.Context(), chi.URLParam(r, "handle"))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{Profile: profile, TierName: model.TierName(profile.Tier)})
}
