package appointments

import "time"

// Appointment statuses. An appointment starts as StatusScheduled; later
// transitions happen through the dashboard, never the call flow.
const (
	StatusScheduled  = "scheduled"
	StatusConfirmed  = "confirmed"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
	StatusNoShow     = "no_show"
)

// UnknownPhone is recorded when the telephony layer never supplied a caller number.
const UnknownPhone = "unknown"

// Appointment is one booked service visit, created at most once per call.
type Appointment struct {
	ID             string    `json:"id"`
	CallID         string    `json:"call_sid"`
	CustomerName   string    `json:"customer_name"`
	CustomerPhone  string    `json:"customer_phone"`
	Problem        string    `json:"problem"`
	ScheduledDate  string    `json:"scheduled_date"` // YYYY-MM-DD
	ScheduledTime  string    `json:"scheduled_time"` // e.g. "10:00 AM"
	TechnicianID   string    `json:"technician_id"`
	TechnicianName string    `json:"technician_name"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Technician is static reference data used for read-only assignment lookups.
type Technician struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Specialties []string `json:"specialties"`
	Phone       string   `json:"phone"`
}

// ValidStatus reports whether s is one of the known appointment statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}
