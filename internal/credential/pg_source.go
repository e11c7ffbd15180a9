package credential

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgSource reads the single admin row from the credentials table. There is no
// registration path; the row is seeded out-of-band.
type PgSource struct {
	pool *pgxpool.Pool
}

func NewPgSource(pool *pgxpool.Pool) *PgSource {
	return &PgSource{pool: pool}
}

func (s *PgSource) PasswordHash(ctx context.Context, username string) (string, error) {
	var hash string
	err := s.pool.QueryRow(ctx, `
		SELECT password_hash
		FROM credentials
		WHERE username = $1
	`, username).Scan(&hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNoSuchUser
		}
		return "", err
	}

	return hash, nil
}
