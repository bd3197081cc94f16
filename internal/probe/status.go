package probe

import "fmt"

// Status is the outcome of a single probe.
type Status int

const (
	// StatusSucceeded means the server answered with a 2xx status.
	StatusSucceeded Status = iota

	// StatusFailed means a non-2xx answer or a transport error.
	StatusFailed

	// StatusTimedOut means the request did not finish within the timeout.
	StatusTimedOut
)

// String returns a human-readable description of the status.
func (s Status) String() string {
	switch s {
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	case StatusTimedOut:
		return "timed out"
	default:
		return "unknown"
	}
}

// Error returns the sentinel error for this status, or nil on success.
func (s Status) Error() error {
	switch s {
	case StatusSucceeded:
		return nil
	case StatusTimedOut:
		return ErrTimedOut
	default:
		return ErrRequestFailed
	}
}

// MarshalText encodes the status by name, so decoded results keep their
// outcome instead of falling back to the zero value.
func (s Status) MarshalText() ([]byte, error) {
	switch s {
	case StatusSucceeded, StatusFailed, StatusTimedOut:
		return []byte(s.String()), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownStatus, int(s))
	}
}

// UnmarshalText decodes a status name written by MarshalText.
func (s *Status) UnmarshalText(text []byte) error {
	for _, candidate := range []Status{StatusSucceeded, StatusFailed, StatusTimedOut} {
		if string(text) == candidate.String() {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownStatus, text)
}
