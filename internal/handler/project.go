package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/practice-tracker/internal/model"
	"github.com/sakif/practice-tracker/internal/service"
)

// ProjectService is implemented by *service.ProjectService.
type ProjectService interface {
	Create(ctx context.Context, in service.ProjectInput) (*model.Project, error)
	List(ctx context.Context) ([]model.Project, error)
	Get(ctx context.Context, projectID string) (*model.Project, error)
}

// SessionService is implemented by *service.SessionService.
type SessionService interface {
	Create(ctx context.Context, projectID string, in model.SessionInput) (*model.Session, error)
	List(ctx context.Context, projectID string) ([]model.Session, error)
}

// ProjectHandler serves the caller's projects and their session ledgers.
type ProjectHandler struct {
	projects ProjectService
	sessions SessionService
	logger   *slog.Logger
}

func NewProjectHandler(projects ProjectService, sessions SessionService, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{projects: projects, sessions: sessions, logger: logger}
}

// HandleCreate creates a project.
//
// HTTP: POST /api/projects
// REQUEST BODY: {"name": "DP drills", "language": "Go", "description": "..."}
func (h *ProjectHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in service.ProjectInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	project, err := h.projects.Create(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, project)
}

// HandleList returns the caller's projects, newest first.
//
// HTTP: GET /api/projects
func (h *ProjectHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projects.List(r.Context())
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	writeJSON(w, http.StatusOK, projects)
}

// HandleGet returns one project.
//
// HTTP: GET /api/projects/{projectID}
func (h *ProjectHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	project, err := h.projects.Get(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	writeJSON(w, http.StatusOK, project)
}

// HandleCreateSession records a practice session and bumps the project's
// problemCount.
//
// HTTP: POST /api/projects/{projectID}/sessions
// REQUEST BODY: {"problemId": 1463, "title": "...", "tags": ["dp"], "timeSpent": 600,
// "submittedCode": "...", "aiFeedback": "...", "isSuccess": true}
func (h *ProjectHandler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	var in model.SessionInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	session, err := h.sessions.Create(r.Context(), chi.URLParam(r, "projectID"), in)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, session)
}

// HandleListSessions returns a project's sessions, newest first.
//
// HTTP: GET /api/projects/{projectID}/sessions
func (h *ProjectHandler) HandleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessions.List(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	writeJSON(w, http.StatusOK, sessions)
}
