package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rs/xid"

	"github.com/sakif/practice-tracker/internal/apperror"
	"github.com/sakif/practice-tracker/internal/model"
	"github.com/sakif/practice-tracker/internal/repository"
)

var _ repository.SessionRepository = (*DB)(nil)

// CreateSessionAndIncrement records session and bumps its project's
// problemCount by exactly one, in a single transaction.
//
// ORDER MATTERS:
// The UPDATE runs first and doubles as the ownership check: it matches only
// when the project exists AND belongs to session.OwnerID. Zero rows affected
// means not found, and the transaction is rolled back before anything is
// written. The increment is a relative "problem_count + 1" evaluated by the
// database, so concurrent sessions never lose an update.
func (db *DB) CreateSessionAndIncrement(ctx context.Context, session *model.Session) (err error) {
	tags := session.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("sqlite: encoding session tags: %w", err)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning session transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`UPDATE projects SET problem_count = problem_count + 1
		 WHERE id = ? AND owner_id = ?`,
		session.ProjectID, session.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: incrementing problem count: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("project", session.ProjectID)
	}

	id := xid.New().String()
	createdAt := db.now().UTC()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, project_id, owner_id, problem_id, title, tags,
			time_spent, submitted_code, ai_feedback, is_success, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		session.ProjectID,
		session.OwnerID,
		session.ProblemID,
		session.Title,
		string(tagsJSON),
		session.TimeSpent,
		session.SubmittedCode,
		session.AIFeedback,
		session.IsSuccess,
		toUnix(createdAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting session: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing session: %w", err)
	}

	session.ID = id
	session.Tags = tags
	session.CreatedAt = createdAt
	return nil
}

// ListSessionsByProject returns the project's sessions, newest first. The
// project must belong to ownerID, else apperror.ErrNotFound.
func (db *DB) ListSessionsByProject(ctx context.Context, projectID, ownerID string) ([]model.Session, error) {
	if _, err := db.GetProjectForOwner(ctx, projectID, ownerID); err != nil {
		return nil, err
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, project_id, owner_id, problem_id, title, tags, time_spent,
			submitted_code, ai_feedback, is_success, created_at
		 FROM sessions
		 WHERE project_id = ? AND owner_id = ?
		 ORDER BY created_at DESC, id DESC`,
		projectID, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing sessions: %w", err)
	}
	defer rows.Close()

	sessions := []model.Session{}
	for rows.Next() {
		var (
			s          model.Session
			tagsJSON   string
			aiFeedback sql.NullString
			createdAt  int64
		)
		if err := rows.Scan(
			&s.ID,
			&s.ProjectID,
			&s.OwnerID,
			&s.ProblemID,
			&s.Title,
			&tagsJSON,
			&s.TimeSpent,
			&s.SubmittedCode,
			&aiFeedback,
			&s.IsSuccess,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning session row: %w", err)
		}

		if err := json.Unmarshal([]byte(tagsJSON), &s.Tags); err != nil {
			return nil, fmt.Errorf("sqlite: decoding tags of session %s: %w", s.ID, err)
		}
		if s.Tags == nil {
			s.Tags = []string{}
		}
		if aiFeedback.Valid {
			s.AIFeedback = &aiFeedback.String
		}
		s.CreatedAt = fromUnix(createdAt)

		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating session rows: %w", err)
	}

	return sessions, nil
}
