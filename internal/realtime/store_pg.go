package realtime

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore is the PostgreSQL-backed ConnectionStore. Expired rows are
// filtered out at read time; a periodic sweep is unnecessary because
// broadcast pruning and disconnect deletes remove most rows long before
// their TTL, and expired leftovers are invisible to every reader.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore creates a PostgreSQL-backed connection store.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

const connCols = `connection_id, scope, established_at, expires_at`

func scanConn(row pgx.Row) (ConnectionRecord, error) {
	var rec ConnectionRecord
	err := row.Scan(&rec.ConnectionID, &rec.Scope, &rec.EstablishedAt, &rec.ExpiresAt)
	return rec, err
}

// Put upserts a record keyed by connection_id; the latest write wins.
func (s *PGStore) Put(ctx context.Context, rec ConnectionRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO realtime_connection (connection_id, scope, established_at, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (connection_id) DO UPDATE
		SET scope = EXCLUDED.scope,
		    established_at = EXCLUDED.established_at,
		    expires_at = EXCLUDED.expires_at`,
		rec.ConnectionID, rec.Scope, rec.EstablishedAt, rec.ExpiresAt)
	if err != nil {
		return fmt.Errorf("put connection %s: %w", rec.ConnectionID, err)
	}
	return nil
}

// Delete removes a record. Deleting an unknown id is not an error.
func (s *PGStore) Delete(ctx context.Context, connectionID string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM realtime_connection WHERE connection_id = $1`, connectionID)
	if err != nil {
		return fmt.Errorf("delete connection %s: %w", connectionID, err)
	}
	return nil
}

// ListAll returns all unexpired records.
func (s *PGStore) ListAll(ctx context.Context) ([]ConnectionRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+connCols+` FROM realtime_connection WHERE expires_at > NOW()`)
	if err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}
	return collectConns(rows)
}

// ListByScope returns the unexpired records whose scope matches exactly.
func (s *PGStore) ListByScope(ctx context.Context, scope Scope) ([]ConnectionRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+connCols+` FROM realtime_connection WHERE scope = $1 AND expires_at > NOW()`,
		scope)
	if err != nil {
		return nil, fmt.Errorf("list connections by scope %q: %w", scope, err)
	}
	return collectConns(rows)
}

func collectConns(rows pgx.Rows) ([]ConnectionRecord, error) {
	defer rows.Close()
	var recs []ConnectionRecord
	for rows.Next() {
		rec, err := scanConn(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
