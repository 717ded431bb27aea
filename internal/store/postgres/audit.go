// Package postgres persists a record of every broadcast this SDK submits, so
// operators can reconcile a broadcast whose outcome was never confirmed
// without relying on the network's own history.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Entry is one recorded broadcast attempt.
type Entry struct {
	ID        int64
	Sender    string
	Namespace string
	Action    string
	Nonce     uint64
	TxHash    string
	Code      int
	Log       string
	CreatedAt time.Time
}

// ListOpts filters and paginates a List/ListBefore query.
type ListOpts struct {
	Since  *time.Time
	Until  *time.Time
	Limit  int
	Offset int
}

// Store persists broadcast Entries to PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Log records a broadcast outcome. detail carries any action-specific
// context (e.g. the encoded execution payload's digest) as JSONB.
func (s *Store) Log(ctx context.Context, e Entry, detail map[string]any) error {
	detailJSON, err := json.Marshal(detail)
	if err != nil {
		return fmt.Errorf("audit: marshal detail: %w", err)
	}

	const query = `
		INSERT INTO broadcast_audit_log (sender, namespace, action, nonce, tx_hash, code, log, detail)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = s.pool.Exec(ctx, query,
		e.Sender, e.Namespace, e.Action, e.Nonce, e.TxHash, e.Code, e.Log, detailJSON)
	if err != nil {
		return fmt.Errorf("audit: logging broadcast for %s.%s: %w", e.Namespace, e.Action, err)
	}
	return nil
}

// List returns broadcast entries matching opts, newest first.
func (s *Store) List(ctx context.Context, opts ListOpts) ([]Entry, error) {
	query := `SELECT id, sender, namespace, action, nonce, tx_hash, code, log, created_at FROM broadcast_audit_log WHERE 1=1`
	args := []any{}
	argIdx := 1

	if opts.Since != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", argIdx)
		args = append(args, *opts.Since)
		argIdx++
	}
	if opts.Until != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", argIdx)
		args = append(args, *opts.Until)
		argIdx++
	}

	query += " ORDER BY created_at DESC"

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, opts.Limit)
		argIdx++
	}
	if opts.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, opts.Offset)
	}

	return s.query(ctx, query, args...)
}

// ListBefore returns every entry recorded strictly before cutoff, oldest
// first -- the shape internal/blob/s3's Archiver needs.
func (s *Store) ListBefore(ctx context.Context, cutoff time.Time) ([]Entry, error) {
	const query = `
		SELECT id, sender, namespace, action, nonce, tx_hash, code, log, created_at
		FROM broadcast_audit_log WHERE created_at < $1 ORDER BY created_at ASC`
	return s.query(ctx, query, cutoff)
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]Entry, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("audit: query: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Sender, &e.Namespace, &e.Action, &e.Nonce, &e.TxHash, &e.Code, &e.Log, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("audit: scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("audit: rows: %w", err)
	}
	return entries, nil
}
