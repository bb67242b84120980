package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/xid"

	"github.com/sakif/practice-tracker/internal/apperror"
	"github.com/sakif/practice-tracker/internal/model"
	"github.com/sakif/practice-tracker/internal/repository"
)

var _ repository.ProjectRepository = (*DB)(nil)

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// CreateProject inserts project, setting its ID, CreatedAt and a zero
// ProblemCount in place.
func (db *DB) CreateProject(ctx context.Context, project *model.Project) error {
	project.ID = xid.New().String()
	project.CreatedAt = db.now().UTC()
	project.ProblemCount = 0

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO projects (id, owner_id, name, language, description, problem_count, created_at)
		 VALUES (?, ?, ?, ?, ?, 0, ?)`,
		project.ID,
		project.OwnerID,
		project.Name,
		project.Language,
		project.Description,
		toUnix(project.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating project: %w", err)
	}

	return nil
}

// ListProjectsByOwner returns ownerID's projects, newest first.
// An owner with no projects gets an empty, non-nil slice.
func (db *DB) ListProjectsByOwner(ctx context.Context, ownerID string) ([]model.Project, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, owner_id, name, language, description, problem_count, created_at
		 FROM projects
		 WHERE owner_id = ?
		 ORDER BY created_at DESC, id DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing projects: %w", err)
	}
	defer rows.Close()

	projects := []model.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning project row: %w", err)
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating project rows: %w", err)
	}

	return projects, nil
}

// GetProjectForOwner returns apperror.ErrNotFound both when the project does
// not exist and when it belongs to another owner.
func (db *DB) GetProjectForOwner(ctx context.Context, projectID, ownerID string) (*model.Project, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT id, owner_id, name, language, description, problem_count, created_at
		 FROM projects
		 WHERE id = ? AND owner_id = ?`,
		projectID, ownerID,
	)

	p, err := scanProject(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("project", projectID)
		}
		return nil, fmt.Errorf("sqlite: getting project %s: %w", projectID, err)
	}

	return p, nil
}

func scanProject(s rowScanner) (*model.Project, error) {
	var (
		p         model.Project
		createdAt int64
	)
	if err := s.Scan(
		&p.ID,
		&p.OwnerID,
		&p.Name,
		&p.Language,
		&p.Description,
		&p.ProblemCount,
		&createdAt,
	); err != nil {
		return nil, err
	}
	p.CreatedAt = fromUnix(createdAt)
	return &p, nil
}
