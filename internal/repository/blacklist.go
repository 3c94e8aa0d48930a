package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

type BlacklistEntry struct {
	Email     string    `db:"email"`
	Reason    string    `db:"reason"`
	CreatedAt time.Time `db:"created_at"`
}

type BlacklistRepository interface {
	Exists(ctx context.Context, email string) (bool, error)
	Add(ctx context.Context, email, reason string) error
	Remove(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, limit, offset int) ([]BlacklistEntry, error)
}

type BlacklistRepositoryImpl struct {
	db *sqlx.DB
}

func NewBlacklistRepository(db *sqlx.DB) *BlacklistRepositoryImpl {
	return &BlacklistRepositoryImpl{db: db}
}

var _ BlacklistRepository = (*BlacklistRepositoryImpl)(nil)

func (r *BlacklistRepositoryImpl) Exists(ctx context.Context, email string) (bool, error) {
	var one int
	err := r.db.GetContext(ctx, &one, `SELECT 1 FROM email_blacklist WHERE email = ? LIMIT 1`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Add is idempotent; re-adding an address updates its reason.
func (r *BlacklistRepositoryImpl) Add(ctx context.Context, email, reason string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO email_blacklist (email, reason, created_at)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE reason = VALUES(reason)
	`, email, reason, time.Now().UTC())
	return err
}

// Remove reports whether a row was deleted.
func (r *BlacklistRepositoryImpl) Remove(ctx context.Context, email string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM email_blacklist WHERE email = ?`, email)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *BlacklistRepositoryImpl) List(ctx context.Context, limit, offset int) ([]BlacklistEntry, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	var out []BlacklistEntry
	err := r.db.SelectContext(ctx, &out, `
		SELECT email, reason, created_at
		  FROM email_blacklist
		 ORDER BY created_at DESC, email
		 LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	return out, nil
}
