package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/practice-tracker/internal/apperror"
	"github.com/sakif/practice-tracker/internal/auth"
	"github.com/sakif/practice-tracker/internal/model"
	"github.com/sakif/practice-tracker/internal/oracle"
	"github.com/sakif/practice-tracker/internal/repository"
)

// RecommendService suggests problems around a tier. It stores nothing; the
// personal variant only reads the caller's stored tier.
type RecommendService struct {
	users  repository.UserRepository
	oracle Oracle
	logger *slog.Logger
}

func NewRecommendService(users repository.UserRepository, o Oracle, logger *slog.Logger) *RecommendService {
	return &RecommendService{users: users, oracle: o, logger: logger}
}

// ByTagAndTier is the anonymous recommendation: problems tagged tag within
// one tier of tier, in the oracle's order, at most five.
func (s *RecommendService) ByTagAndTier(ctx context.Context, tag string, tier int) ([]model.Problem, error) {
	tag, err := normalizeTag(tag)
	if err != nil {
		return nil, err
	}
	if tier < oracle.MinTier || tier > s.oracle.MaxTier() {
		return nil, apperror.InvalidArgument("tier",
			fmt.Sprintf("tier must be between %d and %d", oracle.MinTier, s.oracle.MaxTier()))
	}

	return s.search(ctx, tag, tier)
}

// ForUser recommends around the caller's stored tier. A caller who has not
// registered a handle gets ErrHandleNotRegistered, not an oracle error.
func (s *RecommendService) ForUser(ctx context.Context, tag string) ([]model.Problem, error) {
	userID, err := auth.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	tag, err = normalizeTag(tag)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Tier == nil {
		return nil, apperror.HandleNotRegistered()
	}

	return s.search(ctx, tag, *user.Tier)
}

// LookupProfile is an anonymous pass-through to the oracle's profile.
func (s *RecommendService) LookupProfile(ctx context.Context, handle string) (*model.Profile, error) {
	handle, err := validateHandle(handle)
	if err != nil {
		return nil, err
	}
	return s.oracle.FetchProfile(ctx, handle)
}

func (s *RecommendService) search(ctx context.Context, tag string, tier int) ([]model.Problem, error) {
	problems, err := s.oracle.SearchByTagAndTierWindow(ctx, oracle.NewQuery(tag, tier))
	if err != nil {
		s.logger.Warn("recommendation search failed",
			slog.String("tag", tag),
			slog.Int("tier", tier),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	if len(problems) > oracle.DefaultLimit {
		problems = problems[:oracle.DefaultLimit]
	}
	return problems, nil
}
