package userbooks

import (
	"fmt"
)

// UpdateOutcome is the explicit result kind of an existence-gated update.
type UpdateOutcome int

const (
	// Updated means a row with the given identity existed and was overwritten.
	Updated UpdateOutcome = iota

	// NotFoundEchoed means no row with the given identity existed; the input was echoed and nothing was written.
	NotFoundEchoed
)

// String provides a string representation of UpdateOutcome for logging and debugging.
func (o UpdateOutcome) String() string {
	switch o {
	case Updated:
		return "updated"
	case NotFoundEchoed:
		return "not_found_echoed"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler, so outcomes serialize by name.
func (o UpdateOutcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *UpdateOutcome) UnmarshalText(text []byte) error {
	switch string(text) {
	case "updated":
		*o = Updated
	case "not_found_echoed":
		*o = NotFoundEchoed
	default:
		return fmt.Errorf("unknown update outcome %q", string(text))
	}

	return nil
}
