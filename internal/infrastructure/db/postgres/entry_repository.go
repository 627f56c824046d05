package postgres

import (
	"context"
	"strconv"

	"github.com/kokoro-wiki/kokoro/internal/core/domain"
	"github.com/kokoro-wiki/kokoro/internal/core/ports"
)

var _ ports.EntryRepository = (*EntryRepository)(nil)

type EntryRepository struct {
	db DBTX
}

func NewEntryRepository(db DBTX) *EntryRepository {
	return &EntryRepository{db: db}
}

// table maps a stream to its table. The result is a constant, never user input.
func table(stream domain.Stream) (string, error) {
	switch stream {
	case domain.StreamThought:
		return "thoughts", nil
	case domain.StreamPeople:
		return "people_want_to_talk", nil
	}
	return "", domain.ErrInvalidStream
}

func (r *EntryRepository) Append(ctx context.Context, e *domain.Entry) (*domain.Entry, error) {
	tbl, err := table(e.Stream)
	if err != nil {
		return nil, err
	}
	query := `INSERT INTO ` + tbl + ` (profile_id, content, created_at) VALUES ($1, $2, $3) RETURNING id, created_at`

	out := *e
	var id int64
	if err := r.db.QueryRowContext(ctx, query, e.ProfileID, e.Content, e.CreatedAt.UTC()).Scan(&id, &out.CreatedAt); err != nil {
		if code, _ := pgCode(err); code == codeForeignKeyViolation {
			return nil, domain.ErrProfileNotFound
		}
		return nil, unavailable("insert "+tbl, err)
	}
	out.ID = strconv.FormatInt(id, 10)
	out.CreatedAt = out.CreatedAt.UTC()
	return &out, nil
}

// ListByProfile returns entries newest first; the serial id breaks ties.
func (r *EntryRepository) ListByProfile(ctx context.Context, profileID string, stream domain.Stream) ([]*domain.Entry, error) {
	tbl, err := table(stream)
	if err != nil {
		return nil, err
	}
	query := `SELECT id, content, created_at FROM ` + tbl + `
		 WHERE profile_id = $1
		 ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, profileID)
	if err != nil {
		return nil, unavailable("list "+tbl, err)
	}
	defer rows.Close()

	out := []*domain.Entry{}
	for rows.Next() {
		var id int64
		e := &domain.Entry{ProfileID: profileID, Stream: stream}
		if err := rows.Scan(&id, &e.Content, &e.CreatedAt); err != nil {
			return nil, unavailable("scan "+tbl, err)
		}
		e.ID = strconv.FormatInt(id, 10)
		e.CreatedAt = e.CreatedAt.UTC()
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list "+tbl, err)
	}
	return out, nil
}
