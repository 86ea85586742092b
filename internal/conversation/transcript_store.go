package conversation

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Speaker roles on a transcript turn.
const (
	RoleCaller    = "caller"
	RoleAssistant = "assistant"
)

// Turn is one transcript entry: either the caller's recognized utterance or
// the assistant's spoken reply. Turns are append-only and never mutated.
type Turn struct {
	ID        string    `json:"id"`
	CallID    string    `json:"call_sid"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// TurnFilter narrows and pages transcript listings.
type TurnFilter struct {
	CallID string
	Page   int
	Limit  int
}

// TurnAnalytics aggregates transcript volume for the dashboard.
type TurnAnalytics struct {
	TotalTurns      int            `json:"total_turns"`
	UniqueCalls     int            `json:"unique_calls"`
	AvgTurnsPerCall float64        `json:"avg_turns_per_call"`
	TurnsByDate     map[string]int `json:"turns_by_date"`
}

// TurnStore durably records conversation turns. Persistence is best effort:
// the orchestrator logs failures and keeps the call going.
type TurnStore interface {
	Append(ctx context.Context, turn Turn) error
	// ListByCall returns a call's turns in chronological order.
	ListByCall(ctx context.Context, callID string) ([]Turn, error)
	// List returns turns newest-first with the total count before paging.
	List(ctx context.Context, filter TurnFilter) ([]Turn, int, error)
	Analytics(ctx context.Context, start, end *time.Time) (*TurnAnalytics, error)
}

func normalizeTurnFilter(f TurnFilter) TurnFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 200 {
		f.Limit = 50
	}
	return f
}

// MemoryTurnStore keeps transcripts in process memory. It backs development
// and test runs, and remains the read path when no database is configured.
type MemoryTurnStore struct {
	mu     sync.RWMutex
	turns  []Turn
	byCall map[string][]int
}

// NewMemoryTurnStore creates an empty in-memory transcript store.
func NewMemoryTurnStore() *MemoryTurnStore {
	return &MemoryTurnStore{byCall: make(map[string][]int)}
}

func (s *MemoryTurnStore) Append(_ context.Context, turn Turn) error {
	if turn.ID == "" {
		turn.ID = uuid.NewString()
	}
	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, turn)
	s.byCall[turn.CallID] = append(s.byCall[turn.CallID], len(s.turns)-1)
	return nil
}

func (s *MemoryTurnStore) ListByCall(_ context.Context, callID string) ([]Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idxs := s.byCall[callID]
	out := make([]Turn, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, s.turns[i])
	}
	return out, nil
}

func (s *MemoryTurnStore) List(_ context.Context, filter TurnFilter) ([]Turn, int, error) {
	filter = normalizeTurnFilter(filter)
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]Turn, 0, len(s.turns))
	// Newest first: walk the append-ordered slice backwards.
	for i := len(s.turns) - 1; i >= 0; i-- {
		if filter.CallID != "" && s.turns[i].CallID != filter.CallID {
			continue
		}
		matched = append(matched, s.turns[i])
	}

	total := len(matched)
	offset := (filter.Page - 1) * filter.Limit
	if offset >= total {
		return []Turn{}, total, nil
	}
	endIdx := offset + filter.Limit
	if endIdx > total {
		endIdx = total
	}
	return matched[offset:endIdx], total, nil
}

func (s *MemoryTurnStore) Analytics(_ context.Context, start, end *time.Time) (*TurnAnalytics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	calls := make(map[string]struct{})
	byDate := make(map[string]int)
	total := 0
	for _, turn := range s.turns {
		if start != nil && turn.Timestamp.Before(*start) {
			continue
		}
		if end != nil && turn.Timestamp.After(*end) {
			continue
		}
		total++
		calls[turn.CallID] = struct{}{}
		byDate[turn.Timestamp.UTC().Format("2006-01-02")]++
	}

	avg := 0.0
	if len(calls) > 0 {
		avg = float64(total) / float64(len(calls))
	}
	return &TurnAnalytics{
		TotalTurns:      total,
		UniqueCalls:     len(calls),
		AvgTurnsPerCall: avg,
		TurnsByDate:     byDate,
	}, nil
}
