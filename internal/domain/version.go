package domain

// Version is the optimistic-concurrency token of a transaction aggregate.
// It starts at 1 and is incremented by exactly 1 on every accepted mutation.
// Overflow at the int64 ceiling is not enforced; at one mutation per
// nanosecond it would take centuries to reach.
type Version int64

// InitialVersion is the version assigned by the aggregate factory.
func InitialVersion() Version { return 1 }

// NewVersion validates a stored version on rehydration.
func NewVersion(value int64) (Version, error) {
	if value < 1 {
		return 0, ValidationError("version must be >= 1, got %d", value)
	}
	return Version(value), nil
}

// Next returns the version carried by the following snapshot.
func (v Version) Next() Version { return v + 1 }

// Matches reports numeric equality with another version.
func (v Version) Matches(other Version) bool { return v == other }

// IsOutdated reports whether v is older than another observed version.
func (v Version) IsOutdated(other Version) bool { return v < other }

// Int64 exposes the raw counter for storage and serialization.
func (v Version) Int64() int64 { return int64(v) }
