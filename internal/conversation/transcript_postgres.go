package conversation

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PostgresTurnStore persists conversation turns to PostgreSQL for long-term
// history. A nil receiver or nil DB makes every method a no-op so callers can
// wire it unconditionally.
type PostgresTurnStore struct {
	db *sql.DB
}

// NewPostgresTurnStore creates a transcript store over an open database handle.
func NewPostgresTurnStore(db *sql.DB) *PostgresTurnStore {
	if db == nil {
		return nil
	}
	return &PostgresTurnStore{db: db}
}

func (s *PostgresTurnStore) Append(ctx context.Context, turn Turn) error {
	if s == nil || s.db == nil {
		return nil
	}
	if turn.ID == "" {
		turn.ID = uuid.NewString()
	}
	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversation_turns (id, call_sid, role, content, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		turn.ID, turn.CallID, turn.Role, turn.Content, turn.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("conversation: insert turn: %w", err)
	}
	return nil
}

func (s *PostgresTurnStore) ListByCall(ctx context.Context, callID string) ([]Turn, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, call_sid, role, content, created_at
		 FROM conversation_turns
		 WHERE call_sid = $1
		 ORDER BY created_at ASC`,
		callID,
	)
	if err != nil {
		return nil, fmt.Errorf("conversation: list turns by call: %w", err)
	}
	defer rows.Close()
	return scanTurns(rows)
}

func (s *PostgresTurnStore) List(ctx context.Context, filter TurnFilter) ([]Turn, int, error) {
	if s == nil || s.db == nil {
		return nil, 0, nil
	}
	filter = normalizeTurnFilter(filter)

	where := ""
	args := []any{}
	if filter.CallID != "" {
		where = "WHERE call_sid = $1"
		args = append(args, filter.CallID)
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM conversation_turns %s", where)
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("conversation: count turns: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	listQuery := fmt.Sprintf(
		`SELECT id, call_sid, role, content, created_at
		 FROM conversation_turns %s
		 ORDER BY created_at DESC
		 LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2,
	)
	args = append(args, filter.Limit, offset)

	rows, err := s.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("conversation: list turns: %w", err)
	}
	defer rows.Close()

	turns, err := scanTurns(rows)
	if err != nil {
		return nil, 0, err
	}
	return turns, total, nil
}

func (s *PostgresTurnStore) Analytics(ctx context.Context, start, end *time.Time) (*TurnAnalytics, error) {
	if s == nil || s.db == nil {
		return &TurnAnalytics{TurnsByDate: map[string]int{}}, nil
	}

	where := "WHERE 1=1"
	args := []any{}
	if start != nil {
		args = append(args, *start)
		where += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if end != nil {
		args = append(args, *end)
		where += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}

	out := &TurnAnalytics{TurnsByDate: map[string]int{}}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT DATE(created_at)::text, COUNT(*)
		 FROM conversation_turns %s
		 GROUP BY DATE(created_at)
		 ORDER BY DATE(created_at) DESC`, where), args...)
	if err != nil {
		return nil, fmt.Errorf("conversation: analytics by date: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var date string
		var count int
		if err := rows.Scan(&date, &count); err != nil {
			return nil, fmt.Errorf("conversation: analytics scan: %w", err)
		}
		out.TurnsByDate[date] = count
		out.TotalTurns += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("conversation: analytics rows: %w", err)
	}

	if err := s.db.QueryRowContext(ctx, fmt.Sprintf(
		`SELECT COUNT(DISTINCT call_sid) FROM conversation_turns %s`, where), args...,
	).Scan(&out.UniqueCalls); err != nil {
		return nil, fmt.Errorf("conversation: analytics unique calls: %w", err)
	}

	if out.UniqueCalls > 0 {
		out.AvgTurnsPerCall = float64(out.TotalTurns) / float64(out.UniqueCalls)
	}
	return out, nil
}

func scanTurns(rows *sql.Rows) ([]Turn, error) {
	var turns []Turn
	for rows.Next() {
		var t Turn
		if err := rows.Scan(&t.ID, &t.CallID, &t.Role, &t.Content, &t.Timestamp); err != nil {
			return nil, fmt.Errorf("conversation: scan turn: %w", err)
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("conversation: turn rows: %w", err)
	}
	return turns, nil
}
