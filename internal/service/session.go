package service

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/sakif/practice-tracker/internal/apperror"
	"github.com/sakif/practice-tracker/internal/auth"
	"github.com/sakif/practice-tracker/internal/model"
	"github.com/sakif/practice-tracker/internal/repository"
)

// SessionService is the session ledger. Recording a session and bumping the
// project's problemCount happen together or not at all; the repository's
// transaction guarantees it.
type SessionService struct {
	repo   repository.SessionRepository
	logger *slog.Logger
}

func NewSessionService(repo repository.SessionRepository, logger *slog.Logger) *SessionService {
	return &SessionService{repo: repo, logger: logger}
}

// Create records a session against one of the caller's projects.
func (s *SessionService) Create(ctx context.Context, projectID string, in model.SessionInput) (*model.Session, error) {
	ownerID, err := auth.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := parseID("projectId", projectID); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)

	switch {
	case in.ProblemID <= 0:
		return nil, apperror.InvalidArgument("problemId", "problemId must be positive")
	case in.TimeSpent < 0:
		return nil, apperror.InvalidArgument("timeSpent", "timeSpent must not be negative")
	case utf8.RuneCountInString(title) > MaxSessionTitleLength:
		return nil, apperror.InvalidArgument("title", "title is too long")
	case len(in.SubmittedCode) > MaxCodeLength:
		return nil, apperror.InvalidArgument("submittedCode", "submitted code is too large")
	}

	tags, err := normalizeTags(in.Tags)
	if err != nil {
		return nil, err
	}

	session := &model.Session{
		ProjectID:     projectID,
		OwnerID:       ownerID,
		ProblemID:     in.ProblemID,
		Title:         title,
		Tags:          tags,
		TimeSpent:     in.TimeSpent,
		SubmittedCode: in.SubmittedCode,
		AIFeedback:    in.AIFeedback,
		IsSuccess:     in.IsSuccess,
	}

	if err := s.repo.CreateSessionAndIncrement(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("session recorded",
		slog.String("id", session.ID),
		slog.String("projectID", projectID),
		slog.Int("problemID", session.ProblemID),
		slog.Bool("success", session.IsSuccess),
	)

	return session, nil
}

// List returns the sessions of one of the caller's projects, newest first.
func (s *SessionService) List(ctx context.Context, projectID string) ([]model.Session, error) {
	ownerID, err := auth.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := parseID("projectId", projectID); err != nil {
		return nil, err
	}

	return s.repo.ListSessionsByProject(ctx, projectID, ownerID)
}

// normalizeTags treats tags as a set: normalised, deduplicated, first
// occurrence order kept.
func normalizeTags(in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, raw := range in {
		tag, err := normalizeTag(raw)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out, nil
}
