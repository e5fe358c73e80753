package deadline

import (
	"fmt"
	"strings"
)

// Urgency summarizes time pressure toward a deadline. Values are ordered:
// UrgencyNormal < UrgencyMedium < UrgencyHigh < UrgencyUrgent < UrgencyCritical.
type Urgency int

const (
	// UrgencyNone is only carried by a not-applicable Info.
	UrgencyNone Urgency = iota
	UrgencyNormal
	UrgencyMedium
	UrgencyHigh
	UrgencyUrgent
	UrgencyCritical
)

var urgencyNames = [...]string{
	UrgencyNone:     "none",
	UrgencyNormal:   "normal",
	UrgencyMedium:   "medium",
	UrgencyHigh:     "high",
	UrgencyUrgent:   "urgent",
	UrgencyCritical: "critical",
}

func (u Urgency) String() string {
	if u < 0 || int(u) >= len(urgencyNames) {
		return fmt.Sprintf("urgency(%d)", int(u))
	}
	return urgencyNames[u]
}

// ParseUrgency converts a name such as "urgent" into an Urgency.
func ParseUrgency(name string) (Urgency, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, candidate := range urgencyNames {
		if candidate == name {
			return Urgency(i), nil
		}
	}
	return UrgencyNone, fmt.Errorf("unknown urgency %q", name)
}

// MarshalText encodes the urgency by name.
func (u Urgency) MarshalText() ([]byte, error) {
	if u < 0 || int(u) >= len(urgencyNames) {
		return nil, fmt.Errorf("unknown urgency %d", int(u))
	}
	return []byte(urgencyNames[u]), nil
}

// UnmarshalText decodes an urgency name.
func (u *Urgency) UnmarshalText(text []byte) error {
	parsed, err := ParseUrgency(string(text))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}
