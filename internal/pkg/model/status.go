package model

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidStatus = errors.New("invalid status")

// Status is the health of a device or measurement as reported by SunWEG.
type Status int

const (
	StatusOK Status = iota
	StatusError
	StatusWarn
)

// StatusFromOrdinal maps the raw ordinal used by the inverter and phase
// fields (0 ok, 1 error, 2 warn).
func StatusFromOrdinal(v int) (Status, error) {
	s := Status(v)
	switch s {
	case StatusOK, StatusError, StatusWarn:
		return s, nil
	}
	return StatusOK, fmt.Errorf("%w: %d", ErrInvalidStatus, v)
}

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusError:
		return "ERROR"
	case StatusWarn:
		return "WARN"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	switch strings.ToUpper(string(text)) {
	case "OK":
		*s = StatusOK
	case "ERROR":
		*s = StatusError
	case "WARN":
		*s = StatusWarn
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStatus, string(text))
	}
	return nil
}
