package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/practice-tracker/internal/apperror"
	"github.com/sakif/practice-tracker/internal/model"
	"github.com/sakif/practice-tracker/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

const userColumns = `id, external_subject, email, display_name, handle, tier, rating,
	last_tier_sync_at, last_login_at, created_at`

// UpsertBySubject inserts a user on first login or refreshes an existing one.
//
// INSERT ... ON CONFLICT DO UPDATE keeps the row in place, so the internal id
// and created_at of an existing user survive. INSERT OR REPLACE would delete
// and re-insert the row, breaking the projects.owner_id foreign key.
func (db *DB) UpsertBySubject(ctx context.Context, identity model.ExternalIdentity, now time.Time) (*model.User, error) {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, external_subject, email, display_name, last_login_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(external_subject) DO UPDATE SET
			email = excluded.email,
			display_name = excluded.display_name,
			last_login_at = excluded.last_login_at`,
		xid.New().String(),
		identity.Subject,
		identity.Email,
		identity.DisplayName,
		toUnix(now),
		toUnix(now),
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: upserting user (subject=%s): %w", identity.Subject, err)
	}

	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE external_subject = ?`,
		identity.Subject,
	)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("sqlite: reading upserted user (subject=%s): %w", identity.Subject, err)
	}
	return u, nil
}

// GetUserByID retrieves a user by internal id.
// Returns apperror.ErrNotFound if no user exists with that id.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id,
	)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}
	return u, nil
}

// UpdateTier stores the oracle snapshot for a user.
func (db *DB) UpdateTier(ctx context.Context, userID string, snap repository.TierSnapshot) (*model.User, error) {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE users SET handle = ?, tier = ?, rating = ?, last_tier_sync_at = ?
		 WHERE id = ?`,
		snap.Handle, snap.Tier, snap.Rating, toUnix(snap.SyncedAt), userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: updating tier for user %s: %w", userID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return nil, apperror.NotFound("user", userID)
	}

	return db.GetUserByID(ctx, userID)
}

func scanUser(row *sql.Row) (*model.User, error) {
	var (
		u         model.User
		handle    sql.NullString
		tier      sql.NullInt64
		rating    sql.NullInt64
		syncedAt  sql.NullInt64
		lastLogin int64
		createdAt int64
	)

	if err := row.Scan(
		&u.ID,
		&u.ExternalSubject,
		&u.Email,
		&u.DisplayName,
		&handle,
		&tier,
		&rating,
		&syncedAt,
		&lastLogin,
		&createdAt,
	); err != nil {
		return nil, err
	}

	if handle.Valid {
		u.Handle = &handle.String
	}
	if tier.Valid {
		v := int(tier.Int64)
		u.Tier = &v
	}
	if rating.Valid {
		v := int(rating.Int64)
		u.Rating = &v
	}
	if syncedAt.Valid {
		t := fromUnix(syncedAt.Int64)
		u.LastTierSyncAt = &t
	}
	u.LastLoginAt = fromUnix(lastLogin)
	u.CreatedAt = fromUnix(createdAt)

	return &u, nil
}
