package service

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/practice-tracker/internal/apperror"
	"github.com/sakif/practice-tracker/internal/auth"
	"github.com/sakif/practice-tracker/internal/model"
	"github.com/sakif/practice-tracker/internal/oracle"
	"github.com/sakif/practice-tracker/internal/repository"
)

// =========================================================================
// FAKES
// =========================================================================
//
// Hand-written in-memory implementations of the repository and oracle
// interfaces. They let the service tests run without SQLite or HTTP and
// simulate failures (oracle down, storage error) on demand.

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func asUser(userID string) context.Context {
	return auth.WithUserID(context.Background(), userID)
}

type fakeUserRepo struct {
	mu        sync.Mutex
	bySubject map[string]*model.User
	byID      map[string]*model.User
	upserts   int
	updateErr error
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		bySubject: make(map[string]*model.User),
		byID:      make(map[string]*model.User),
	}
}

func (f *fakeUserRepo) UpsertBySubject(_ context.Context, id model.ExternalIdentity, now time.Time) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++

	if u, ok := f.bySubject[id.Subject]; ok {
		u.Email = id.Email
		u.DisplayName = id.DisplayName
		u.LastLoginAt = now
		cp := *u
		return &cp, nil
	}

	u := &model.User{
		ID:              xid.New().String(),
		ExternalSubject: id.Subject,
		Email:           id.Email,
		DisplayName:     id.DisplayName,
		LastLoginAt:     now,
		CreatedAt:       now,
	}
	f.bySubject[id.Subject] = u
	f.byID[u.ID] = u
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) UpdateTier(_ context.Context, userID string, snap repository.TierSnapshot) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	u, ok := f.byID[userID]
	if !ok {
		return nil, apperror.NotFound("user", userID)
	}
	handle, tier, rating, synced := snap.Handle, snap.Tier, snap.Rating, snap.SyncedAt
	u.Handle, u.Tier, u.Rating, u.LastTierSyncAt = &handle, &tier, &rating, &synced
	cp := *u
	return &cp, nil
}

// seed adds a user directly, optionally with a stored tier.
func (f *fakeUserRepo) seed(tier *int) *model.User {
	u, _ := f.UpsertBySubject(context.Background(), model.ExternalIdentity{
		Subject: xid.New().String(), Email: "s@sejong.ac.kr", DisplayName: "S",
	}, time.Now())
	if tier != nil {
		f.mu.Lock()
		t := *tier
		f.byID[u.ID].Tier = &t
		f.mu.Unlock()
		u.Tier = &t
	}
	return u
}

// fakeLedger implements both project and session repositories over one map
// so the problemCount bookkeeping can be checked.
type fakeLedger struct {
	mu        sync.Mutex
	projects  map[string]*model.Project
	sessions  []model.Session
	clock     time.Time
	createErr error
}

var (
	_ repository.ProjectRepository = (*fakeLedger)(nil)
	_ repository.SessionRepository = (*fakeLedger)(nil)
)

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		projects: make(map[string]*model.Project),
		clock:    time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (f *fakeLedger) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func (f *fakeLedger) CreateProject(_ context.Context, p *model.Project) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	p.ID = xid.New().String()
	p.CreatedAt = f.tick()
	p.ProblemCount = 0
	cp := *p
	f.projects[p.ID] = &cp
	return nil
}

func (f *fakeLedger) ListProjectsByOwner(_ context.Context, ownerID string) ([]model.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Project{}
	for _, p := range f.projects {
		if p.OwnerID == ownerID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeLedger) GetProjectForOwner(_ context.Context, projectID, ownerID string) (*model.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projects[projectID]
	if !ok || p.OwnerID != ownerID {
		return nil, apperror.NotFound("project", projectID)
	}
	cp := *p
	return &cp, nil
}

func (f *fakeLedger) CreateSessionAndIncrement(_ context.Context, s *model.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	p, ok := f.projects[s.ProjectID]
	if !ok || p.OwnerID != s.OwnerID {
		return apperror.NotFound("project", s.ProjectID)
	}
	s.ID = xid.New().String()
	s.CreatedAt = f.tick()
	p.ProblemCount++
	f.sessions = append(f.sessions, *s)
	return nil
}

func (f *fakeLedger) ListSessionsByProject(_ context.Context, projectID, ownerID string) ([]model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projects[projectID]
	if !ok || p.OwnerID != ownerID {
		return nil, apperror.NotFound("project", projectID)
	}
	out := []model.Session{}
	for i := len(f.sessions) - 1; i >= 0; i-- {
		if f.sessions[i].ProjectID == projectID {
			out = append(out, f.sessions[i])
		}
	}
	return out, nil
}

// fakeOracle records the queries it receives and answers from canned data.
type fakeOracle struct {
	mu       sync.Mutex
	maxTier  int
	profiles map[string]model.Profile
	problems []model.Problem
	err      error
	queries  []oracle.Query
	lookups  []string
}

var _ Oracle = (*fakeOracle)(nil)

func newFakeOracle() *fakeOracle {
	return &fakeOracle{maxTier: oracle.DefaultMaxTier, profiles: make(map[string]model.Profile)}
}

func (f *fakeOracle) MaxTier() int { return f.maxTier }

func (f *fakeOracle) FetchProfile(_ context.Context, handle string) (*model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups = append(f.lookups, handle)
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.profiles[handle]
	if !ok {
		return nil, apperror.OracleUnavailable("fetch profile", nil)
	}
	return &p, nil
}

func (f *fakeOracle) SearchByTagAndTierWindow(_ context.Context, q oracle.Query) ([]model.Problem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	out := make([]model.Problem, len(f.problems))
	copy(out, f.problems)
	return out, nil
}

func (f *fakeOracle) lastQuery() oracle.Query {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[len(f.queries)-1]
}

func intPtr(v int) *int { return &v }
