package scheduling

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no_show"
)

// transitions is the closed transition table. Statuses with no entry are
// terminal.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled, StatusNoShow},
	StatusConfirmed: {StatusCompleted, StatusCancelled, StatusNoShow},
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// Terminal statuses admit no further transitions.
func (s Status) Terminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

// Active statuses block the provider's calendar.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ActiveStatuses is the SQL-friendly list of calendar-blocking statuses.
func ActiveStatuses() []string {
	return []string{string(StatusPending), string(StatusConfirmed)}
}
