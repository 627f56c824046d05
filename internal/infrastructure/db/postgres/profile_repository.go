package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/kokoro-wiki/kokoro/internal/core/domain"
	"github.com/kokoro-wiki/kokoro/internal/core/ports"
)

var _ ports.ProfileRepository = (*ProfileRepository)(nil)

// ProfileRepository relies on profiles_username_key (unique on lower(username))
// and profiles_principal_key for the registry invariants.
type ProfileRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db, now: time.Now}
}

const selectProfile = `
	SELECT p.id::text, p.principal_id::text, pr.email, p.username, p.display_username,
	       p.display_name, p.created_at, p.updated_at
	FROM profiles p
	JOIN principals pr ON pr.id = p.principal_id `

func (r *ProfileRepository) Create(ctx context.Context, p *domain.Profile) (*domain.Profile, error) {
	query :=
		`INSERT INTO profiles (id, principal_id, username, display_username, display_name, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.PrincipalID, p.Username, p.DisplayUsername, p.DisplayName, p.CreatedAt.UTC(), p.UpdatedAt.UTC())
	if err != nil {
		switch code, constraint := pgCode(err); {
		case code == codeUniqueViolation && constraint == constraintPrincipal:
			return nil, domain.ErrPrincipalRegistered
		case code == codeUniqueViolation && constraint == constraintUsername:
			return nil, domain.ErrUsernameTaken
		case code == codeForeignKeyViolation:
			return nil, domain.ErrPrincipalNotFound
		}
		return nil, unavailable("insert profile", err)
	}
	return r.findOne(ctx, r.db, `WHERE p.id::text = $1`, p.ID)
}

func (r *ProfileRepository) FindByUsername(ctx context.Context, username string) (*domain.Profile, error) {
	return r.findOne(ctx, r.db, `WHERE lower(p.username) = lower($1)`, username)
}

func (r *ProfileRepository) FindByPrincipal(ctx context.Context, principalID string) (*domain.Profile, error) {
	return r.findOne(ctx, r.db, `WHERE p.principal_id::text = $1`, principalID)
}

// Rename locks the profile row and rewrites its username in one transaction.
func (r *ProfileRepository) Rename(ctx context.Context, profileID, username, displayUsername string) (*domain.Profile, error) {
	var renamed *domain.Profile
	err := WithTx(ctx, r.db, nil, func(ctx context.Context, tx DBTX) error {
		var id string
		err := tx.QueryRowContext(ctx, `SELECT id::text FROM profiles WHERE id::text = $1 FOR UPDATE`, profileID).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrProfileNotFound
		}
		if err != nil {
			return unavailable("lock profile", err)
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE profiles SET username = $2, display_username = $3, updated_at = $4 WHERE id::text = $1`,
			profileID, username, displayUsername, r.now().UTC())
		if err != nil {
			if code, constraint := pgCode(err); code == codeUniqueViolation && constraint == constraintUsername {
				return domain.ErrUsernameTaken
			}
			return unavailable("rename profile", err)
		}

		renamed, err = r.findOne(ctx, tx, `WHERE p.id::text = $1`, profileID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return renamed, nil
}

func (r *ProfileRepository) findOne(ctx context.Context, db DBTX, where string, arg any) (*domain.Profile, error) {
	p := &domain.Profile{}
	err := db.QueryRowContext(ctx, selectProfile+where, arg).Scan(
		&p.ID, &p.PrincipalID, &p.PrincipalEmail, &p.Username, &p.DisplayUsername,
		&p.DisplayName, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, unavailable("find profile", err)
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}
