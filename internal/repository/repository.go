// Package repository declares the storage contracts the services depend on.
// Every read and write of a project or session is scoped by owner id; an
// entity owned by someone else is indistinguishable from a missing one.
package repository

import (
	"context"
	"time"

	"github.com/sakif/practice-tracker/internal/model"
)

// TierSnapshot is the ranking state copied from the oracle onto a user.
type TierSnapshot struct {
	Handle   string
	Tier     int
	Rating   int
	SyncedAt time.Time
}

type UserRepository interface {
	// UpsertBySubject creates the user on first login and refreshes email,
	// display name and last login afterwards. The internal id and createdAt
	// never change for a given subject.
	UpsertBySubject(ctx context.Context, identity model.ExternalIdentity, now time.Time) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	UpdateTier(ctx context.Context, userID string, snap TierSnapshot) (*model.User, error)
}

type ProjectRepository interface {
	CreateProject(ctx context.Context, project *model.Project) error
	ListProjectsByOwner(ctx context.Context, ownerID string) ([]model.Project, error)
	GetProjectForOwner(ctx context.Context, projectID, ownerID string) (*model.Project, error)
}

type SessionRepository interface {
	// CreateSessionAndIncrement inserts session and bumps its project's
	// problemCount in one transaction. Either both happen or neither does.
	CreateSessionAndIncrement(ctx context.Context, session *model.Session) error
	ListSessionsByProject(ctx context.Context, projectID, ownerID string) ([]model.Session, error)
}
