package domain

// Status is the lifecycle state of a transaction (and of each of its records).
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusSuccess    Status = "SUCCESS"
	StatusFailed     Status = "FAILED"
	StatusCancelled  Status = "CANCELLED"
	StatusRollback   Status = "ROLLBACK"
)

// transitions is the single source of truth for transition legality.
// Terminal statuses (SUCCESS, FAILED, CANCELLED, ROLLBACK) have no entry:
// once reached, no target is allowed, including the status itself.
var transitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusSuccess, StatusFailed, StatusCancelled},
}

// Statuses returns all known statuses.
func Statuses() []Status {
	return []Status{
		StatusPending,
		StatusProcessing,
		StatusSuccess,
		StatusFailed,
		StatusCancelled,
		StatusRollback,
	}
}

// ParseStatus converts a wire-level string into a Status.
func ParseStatus(s string) (Status, error) {
	for _, known := range Statuses() {
		if Status(s) == known {
			return known, nil
		}
	}
	return "", ValidationError("unknown status %q", s)
}

// IsValid reports whether s is one of the known statuses.
func (s Status) IsValid() bool {
	_, err := ParseStatus(string(s))
	return err == nil
}

// IsCompleted reports whether s is terminal.
func (s Status) IsCompleted() bool {
	return s == StatusSuccess || s == StatusFailed || s == StatusCancelled || s == StatusRollback
}

// AllowsDataUpdate reports whether record payloads may be changed in this status.
func (s Status) AllowsDataUpdate() bool {
	return s == StatusPending || s == StatusFailed
}

// IsProcessing reports whether s is the in-flight status.
func (s Status) IsProcessing() bool {
	return s == StatusProcessing
}

// CanTransitionTo reports whether the transition table allows s -> target.
func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

func (s Status) String() string { return string(s) }
