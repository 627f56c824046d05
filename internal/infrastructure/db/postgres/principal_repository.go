package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/kokoro-wiki/kokoro/internal/core/domain"
	"github.com/kokoro-wiki/kokoro/internal/core/ports"
)

var _ ports.PrincipalRepository = (*PrincipalRepository)(nil)

type PrincipalRepository struct {
	db DBTX
}

func NewPrincipalRepository(db DBTX) *PrincipalRepository {
	return &PrincipalRepository{db: db}
}

func (r *PrincipalRepository) Create(ctx context.Context, p *domain.Principal) (*domain.Principal, error) {
	query :=
		`INSERT INTO principals (id, email, password_hash, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`

	out := *p
	err := r.db.QueryRowContext(ctx, query, p.ID, p.Email, p.PasswordHash, p.CreatedAt.UTC()).Scan(&out.CreatedAt)
	if err != nil {
		if code, constraint := pgCode(err); code == codeUniqueViolation && constraint == constraintEmail {
			return nil, domain.ErrPrincipalExists
		}
		return nil, unavailable("insert principal", err)
	}
	out.CreatedAt = out.CreatedAt.UTC()
	return &out, nil
}

func (r *PrincipalRepository) FindByEmail(ctx context.Context, email string) (*domain.Principal, error) {
	return r.findOne(ctx, `WHERE email = $1`, email)
}

func (r *PrincipalRepository) FindByID(ctx context.Context, id string) (*domain.Principal, error) {
	return r.findOne(ctx, `WHERE id::text = $1`, id)
}

func (r *PrincipalRepository) findOne(ctx context.Context, where string, arg any) (*domain.Principal, error) {
	query := `SELECT id::text, email, password_hash, created_at FROM principals ` + where

	p := &domain.Principal{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&p.ID, &p.Email, &p.PasswordHash, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPrincipalNotFound
		}
		return nil, unavailable("find principal", err)
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return p, nil
}
