package appointments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bettercallhomme/voiceline/pkg/logging"
)

// BookingRequest carries everything needed to commit an appointment from a
// confirmed conversation.
type BookingRequest struct {
	CallID        string
	CustomerName  string
	CustomerPhone string
	Problem       string
	// PreferredDate is a spoken label ("tomorrow", "today") or a literal
	// date; it is resolved against the clock at commit time.
	PreferredDate string
	PreferredTime string
}

// Repository persists appointments. All writes from the Service are best
// effort: a persistence failure is logged and the in-memory booking stands.
type Repository interface {
	Insert(ctx context.Context, appt *Appointment) error
	GetByID(ctx context.Context, id string) (*Appointment, error)
	List(ctx context.Context, filter ListFilter) ([]Appointment, int, error)
	UpdateStatus(ctx context.Context, id, status string) (*Appointment, error)
	Analytics(ctx context.Context, start, end *time.Time) (*Analytics, error)
}

// ListFilter narrows and pages appointment listings.
type ListFilter struct {
	Status       string
	TechnicianID string
	Date         string
	Page         int
	Limit        int
}

// Analytics aggregates bookings for the dashboard.
type Analytics struct {
	Total        int            `json:"total"`
	ByStatus     map[string]int `json:"by_status"`
	ByTechnician map[string]int `json:"by_technician"`
}

// Service commits appointments exactly once per call. Two trigger paths can
// race for the same call (the affirmative scheduling turn and the deferred
// call-completion webhook); the per-call guard makes the second a no-op.
type Service struct {
	mu     sync.Mutex
	byCall map[string]*Appointment
	order  []*Appointment

	roster []Technician
	repo   Repository
	logger *logging.Logger
	now    func() time.Time
}

// NewService creates an appointment service. repo may be nil; the service
// then serves reads from memory only.
func NewService(roster []Technician, repo Repository, logger *logging.Logger) *Service {
	if len(roster) == 0 {
		roster = DefaultRoster()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		byCall: make(map[string]*Appointment),
		roster: roster,
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// Schedule books an appointment for a confirmed call. Invoking it again for
// the same call returns the already-committed appointment with created=false.
func (s *Service) Schedule(ctx context.Context, req BookingRequest) (*Appointment, bool, error) {
	if req.CallID == "" {
		return nil, false, errors.New("appointments: call id required")
	}
	if req.CustomerName == "" || req.Problem == "" {
		return nil, false, errors.New("appointments: customer name and problem required")
	}

	s.mu.Lock()
	if existing, ok := s.byCall[req.CallID]; ok {
		s.mu.Unlock()
		s.logger.Info("appointment already committed for call, skipping",
			"call_sid", req.CallID, "appointment_id", existing.ID)
		return cloneAppointment(existing), false, nil
	}

	now := s.now().UTC()
	tech := AssignTechnician(req.Problem, s.roster)
	phone := strings.TrimSpace(req.CustomerPhone)
	if phone == "" {
		phone = UnknownPhone
	}
	timeOfDay := req.PreferredTime
	if timeOfDay == "" {
		timeOfDay = "10:00 AM"
	}

	appt := &Appointment{
		ID:             uuid.NewString(),
		CallID:         req.CallID,
		CustomerName:   req.CustomerName,
		CustomerPhone:  phone,
		Problem:        req.Problem,
		ScheduledDate:  resolveDate(req.PreferredDate, now),
		ScheduledTime:  timeOfDay,
		TechnicianID:   tech.ID,
		TechnicianName: tech.Name,
		Status:         StatusScheduled,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.byCall[req.CallID] = appt
	s.order = append(s.order, appt)
	s.mu.Unlock()

	s.logger.Info("appointment scheduled",
		"appointment_id", appt.ID,
		"call_sid", appt.CallID,
		"technician", appt.TechnicianName,
		"scheduled_date", appt.ScheduledDate,
		"scheduled_time", appt.ScheduledTime,
	)

	if s.repo != nil {
		if err := s.repo.Insert(ctx, appt); err != nil {
			// Best effort: the booking decision stands even when the row
			// cannot be written.
			s.logger.Error("failed to persist appointment", "error", err, "appointment_id", appt.ID)
		}
	}
	return cloneAppointment(appt), true, nil
}

// BookedForCall reports whether a call already produced an appointment.
func (s *Service) BookedForCall(callID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.byCall[callID]
	return ok
}

// Get returns an appointment by ID, preferring the repository when configured.
func (s *Service) Get(ctx context.Context, id string) (*Appointment, error) {
	if s.repo != nil {
		return s.repo.GetByID(ctx, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, appt := range s.order {
		if appt.ID == id {
			return cloneAppointment(appt), nil
		}
	}
	return nil, nil
}

// List returns appointments newest-first with the total count before paging.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Appointment, int, error) {
	if s.repo != nil {
		return s.repo.List(ctx, filter)
	}
	filter = normalizeListFilter(filter)

	s.mu.Lock()
	defer s.mu.Unlock()
	matched := make([]Appointment, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		appt := s.order[i]
		if filter.Status != "" && appt.Status != filter.Status {
			continue
		}
		if filter.TechnicianID != "" && appt.TechnicianID != filter.TechnicianID {
			continue
		}
		if filter.Date != "" && appt.ScheduledDate != filter.Date {
			continue
		}
		matched = append(matched, *appt)
	}

	total := len(matched)
	offset := (filter.Page - 1) * filter.Limit
	if offset >= total {
		return []Appointment{}, total, nil
	}
	endIdx := offset + filter.Limit
	if endIdx > total {
		endIdx = total
	}
	return matched[offset:endIdx], total, nil
}

// UpdateStatus transitions an appointment's status from the dashboard.
func (s *Service) UpdateStatus(ctx context.Context, id, status string) (*Appointment, error) {
	if !ValidStatus(status) {
		return nil, fmt.Errorf("appointments: invalid status %q", status)
	}

	var updated *Appointment
	if s.repo != nil {
		appt, err := s.repo.UpdateStatus(ctx, id, status)
		if err != nil {
			return nil, err
		}
		updated = appt
	}

	// Keep the in-memory copy coherent for memory-only reads.
	s.mu.Lock()
	for _, appt := range s.order {
		if appt.ID == id {
			appt.Status = status
			appt.UpdatedAt = s.now().UTC()
			if updated == nil {
				updated = cloneAppointment(appt)
			}
			break
		}
	}
	s.mu.Unlock()

	if updated == nil {
		return nil, fmt.Errorf("appointments: appointment %s not found", id)
	}
	return updated, nil
}

// AnalyticsReport aggregates bookings, from the repository when configured.
func (s *Service) AnalyticsReport(ctx context.Context, start, end *time.Time) (*Analytics, error) {
	if s.repo != nil {
		return s.repo.Analytics(ctx, start, end)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := &Analytics{ByStatus: map[string]int{}, ByTechnician: map[string]int{}}
	for _, appt := range s.order {
		out.Total++
		out.ByStatus[appt.Status]++
		out.ByTechnician[appt.TechnicianName]++
	}
	return out, nil
}

// Technicians returns the static roster.
func (s *Service) Technicians() []Technician {
	out := make([]Technician, len(s.roster))
	copy(out, s.roster)
	return out
}

// resolveDate turns a spoken date label into a calendar date. Unparseable
// input defaults to the next day, mirroring the single-slot policy.
func resolveDate(label string, now time.Time) string {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "", "tomorrow":
		return now.AddDate(0, 0, 1).Format("2006-01-02")
	case "today":
		return now.Format("2006-01-02")
	}
	for _, layout := range []string{"2006-01-02", "01/02/2006", "01-02-2006"} {
		if parsed, err := time.Parse(layout, strings.TrimSpace(label)); err == nil {
			return parsed.Format("2006-01-02")
		}
	}
	return now.AddDate(0, 0, 1).Format("2006-01-02")
}

func normalizeListFilter(f ListFilter) ListFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 200 {
		f.Limit = 50
	}
	return f
}

func cloneAppointment(a *Appointment) *Appointment {
	if a == nil {
		return nil
	}
	cp := *a
	return &cp
}
