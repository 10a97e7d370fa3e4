package types

import (
	"time"

	"github.com/google/uuid"
)

// RuleSetID identifies one stored version of a rule document.
// UUIDv7 time-ordering keeps versions of the same name sortable by creation.
type RuleSetID string

// NewRuleSetID generates a UUIDv7 rule set identifier.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewRuleSetID() RuleSetID {
	return RuleSetID(uuid.Must(uuid.NewV7()).String())
}

// ParseRuleSetID validates and converts a string to RuleSetID.
// Rejects malformed UUIDs to prevent invalid IDs from reaching the store.
func ParseRuleSetID(s string) (RuleSetID, error) {
	_, err := uuid.Parse(s)
	if err != nil {
		return "", err
	}
	return RuleSetID(s), nil
}

// RuleSetIDTime extracts the timestamp embedded in a UUIDv7 ID.
// Returns zero time for invalid UUIDs; caller should check IsZero().
func RuleSetIDTime(id RuleSetID) time.Time {
	u, err := uuid.Parse(string(id))
	if err != nil {
		return time.Time{}
	}
	sec, nsec := u.Time().UnixTime()
	return time.Unix(sec, nsec)
}
