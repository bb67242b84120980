package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/practice-tracker/internal/auth"
	"github.com/sakif/practice-tracker/internal/handler"
	"github.com/sakif/practice-tracker/internal/model"
	"github.com/sakif/practice-tracker/internal/service"
)

// Mocks implement the handler's service interfaces. Each records its last
// call and returns canned values, so the tests cover only HTTP concerns:
// parsing, status codes and body shape.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockProvider struct {
	identity *model.ExternalIdentity
	err      error
	gotCode  string
}

func (m *mockProvider) AuthURL(state string) string {
	return "https://login.example.com/authorize?state=" + state
}

func (m *mockProvider) Exchange(_ context.Context, code string) (*model.ExternalIdentity, error) {
	m.gotCode = code
	return m.identity, m.err
}

type mockIdentity struct {
	result    *service.LoginResult
	user      *model.User
	profile   *model.Profile
	err       error
	gotHandle string
	gotLogin  model.ExternalIdentity
}

func (m *mockIdentity) Login(_ context.Context, id model.ExternalIdentity) (*service.LoginResult, error) {
	m.gotLogin = id
	return m.result, m.err
}

func (m *mockIdentity) Me(ctx context.Context) (*model.User, error) {
	if _, err := auth.RequireUser(ctx); err != nil {
		return nil, err
	}
	return m.user, m.err
}

func (m *mockIdentity) RegisterHandle(ctx context.Context, handle string) (*model.Profile, error) {
	m.gotHandle = handle
	if _, err := auth.RequireUser(ctx); err != nil {
		return nil, err
	}
	return m.profile, m.err
}

type mockProjects struct {
	project  *model.Project
	projects []model.Project
	err      error
	gotInput service.ProjectInput
	gotID    string
}

func (m *mockProjects) Create(_ context.Context, in service.ProjectInput) (*model.Project, error) {
	m.gotInput = in
	return m.project, m.err
}

func (m *mockProjects) List(context.Context) ([]model.Project, error) {
	return m.projects, m.err
}

func (m *mockProjects) Get(_ context.Context, id string) (*model.Project, error) {
	m.gotID = id
	return m.project, m.err
}

type mockSessions struct {
	session  *model.Session
	sessions []model.Session
	err      error
	gotID    string
	gotInput model.SessionInput
}

func (m *mockSessions) Create(_ context.Context, projectID string, in model.SessionInput) (*model.Session, error) {
	m.gotID = projectID
	m.gotInput = in
	return m.session, m.err
}

func (m *mockSessions) List(_ context.Context, projectID string) ([]model.Session, error) {
	m.gotID = projectID
	return m.sessions, m.err
}

type mockRecommend struct {
	problems  []model.Problem
	profile   *model.Profile
	err       error
	gotTag    string
	gotTier   int
	gotHandle string
}

func (m *mockRecommend) ByTagAndTier(_ context.Context, tag string, tier int) ([]model.Problem, error) {
	m.gotTag, m.gotTier = tag, tier
	return m.problems, m.err
}

func (m *mockRecommend) ForUser(_ context.Context, tag string) ([]model.Problem, error) {
	m.gotTag = tag
	return m.problems, m.err
}

func (m *mockRecommend) LookupProfile(_ context.Context, handle string) (*model.Profile, error) {
	m.gotHandle = handle
	return m.profile, m.err
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) handler.ErrorResponse {
	t.Helper()
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	var body handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	return body
}

func withUser(r *http.Request, userID string) *http.Request {
	return r.WithContext(auth.WithUserID(r.Context(), userID))
}
