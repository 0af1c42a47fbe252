package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/samirrijal/seascope/internal/core/domain"
)

// QueryLogRepo implements ports.QueryLogRepository.
type QueryLogRepo struct {
	db *DB
}

func NewQueryLogRepo(db *DB) *QueryLogRepo {
	return &QueryLogRepo{db: db}
}

func (r *QueryLogRepo) Insert(ctx context.Context, e *domain.QueryLogEntry) error {
	var region []byte
	if e.Region != nil {
		b, err := json.Marshal(e.Region)
		if err != nil {
			return fmt.Errorf("encode region: %w", err)
		}
		region = b
	}
	entities := e.Entities
	if entities == nil {
		entities = []string{}
	}

	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO query_log (session_id, token, prompt, region, outcome, total_features, entities, error, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9, $10)
		RETURNING id::text
	`, e.SessionID, int64(e.Token), e.Prompt, region, string(e.Outcome), e.TotalFeatures,
		entities, e.Error, e.Duration.Milliseconds(), e.CreatedAt).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("insert query log: %w", err)
	}
	return nil
}

// ListBySession returns a page of a session's submissions, newest first,
// and the total number of rows for the session.
func (r *QueryLogRepo) ListBySession(ctx context.Context, sessionID string, offset, limit int) ([]domain.QueryLogEntry, int, error) {
	var total int
	if err := r.db.Pool.QueryRow(ctx,
		`SELECT count(*) FROM query_log WHERE session_id = $1`, sessionID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT id::text, session_id, token, prompt, region, outcome, total_features, entities,
		       COALESCE(error, ''), duration_ms, created_at
		FROM query_log
		WHERE session_id = $1
		ORDER BY created_at DESC, id DESC
		OFFSET $2 LIMIT $3
	`, sessionID, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []domain.QueryLogEntry
	for rows.Next() {
		var (
			e          domain.QueryLogEntry
			token      int64
			region     []byte
			outcome    string
			durationMs int64
		)
		if err := rows.Scan(&e.ID, &e.SessionID, &token, &e.Prompt, &region, &outcome,
			&e.TotalFeatures, &e.Entities, &e.Error, &durationMs, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		e.Token = uint64(token)
		e.Outcome = domain.QueryOutcome(outcome)
		e.Duration = time.Duration(durationMs) * time.Millisecond
		if len(region) > 0 {
			var qr domain.QueryRegion
			if err := json.Unmarshal(region, &qr); err != nil {
				return nil, 0, fmt.Errorf("decode region: %w", err)
			}
			e.Region = &qr
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}
