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

// ProjectInput carries the caller-supplied fields of a new project.
type ProjectInput struct {
	Name        string `json:"name"`
	Language    string `json:"language"`
	Description string `json:"description"`
}

// ProjectService owns the caller's projects. It never changes ProblemCount;
// only the session ledger does.
type ProjectService struct {
	repo   repository.ProjectRepository
	logger *slog.Logger
}

func NewProjectService(repo repository.ProjectRepository, logger *slog.Logger) *ProjectService {
	return &ProjectService{repo: repo, logger: logger}
}

// Create validates in and stores a new project owned by the caller.
func (s *ProjectService) Create(ctx context.Context, in ProjectInput) (*model.Project, error) {
	ownerID, err := auth.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	language := strings.TrimSpace(in.Language)
	description := strings.TrimSpace(in.Description)

	switch {
	case name == "":
		return nil, apperror.InvalidArgument("name", "project name is required")
	case utf8.RuneCountInString(name) > MaxProjectNameLength:
		return nil, apperror.InvalidArgument("name", "project name is too long")
	case language == "":
		return nil, apperror.InvalidArgument("language", "language is required")
	case utf8.RuneCountInString(language) > MaxLanguageLength:
		return nil, apperror.InvalidArgument("language", "language is too long")
	case utf8.RuneCountInString(description) > MaxDescriptionLength:
		return nil, apperror.InvalidArgument("description", "description is too long")
	}

	project := &model.Project{
		OwnerID:     ownerID,
		Name:        name,
		Language:    language,
		Description: description,
	}

	if err := s.repo.CreateProject(ctx, project); err != nil {
		s.logger.Error("failed to create project",
			slog.String("ownerID", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.logger.Info("project created",
		slog.String("id", project.ID),
		slog.String("ownerID", ownerID),
	)

	return project, nil
}

// List returns the caller's projects, newest first.
func (s *ProjectService) List(ctx context.Context) ([]model.Project, error) {
	ownerID, err := auth.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	return s.repo.ListProjectsByOwner(ctx, ownerID)
}

// Get returns one of the caller's projects. Someone else's project is
// reported exactly like a missing one.
func (s *ProjectService) Get(ctx context.Context, projectID string) (*model.Project, error) {
	ownerID, err := auth.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := parseID("projectId", projectID); err != nil {
		return nil, err
	}

	return s.repo.GetProjectForOwner(ctx, projectID, ownerID)
}
