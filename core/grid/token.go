package grid

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Kind is the assignment layer a token belongs to.
type Kind string

const (
	KindWorker Kind = "worker"
	KindShift  Kind = "shift"
)

var ErrInvalidKind = errors.New("kind must be one of: worker, shift")

func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindWorker, KindShift:
		return k, nil
	default:
		return "", ErrInvalidKind
	}
}

func (k Kind) Valid() bool { return k == KindWorker || k == KindShift }

// Token is a draggable unit: a worker or a shift time range.
type Token interface {
	TokenID() string
	Kind() Kind
	Label() string
}

type WorkerToken struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	RoleLabel   string `json:"role_label"`
}

func (w WorkerToken) TokenID() string { return w.ID }
func (w WorkerToken) Kind() Kind      { return KindWorker }
func (w WorkerToken) Label() string   { return w.DisplayName }

type ShiftToken struct {
	ID    string    `json:"id"`
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

func (s ShiftToken) TokenID() string { return s.ID }
func (s ShiftToken) Kind() Kind      { return KindShift }

// Label is the time range, eg: "9:00 AM - 5:00 PM".
func (s ShiftToken) Label() string { return s.Start.String() + " - " + s.End.String() }

// TimeOfDay counts minutes since midnight; 1440 is the next midnight.
type TimeOfDay int

const EndOfDay TimeOfDay = 24 * 60

var ErrInvalidTimeOfDay = errors.New("time must be formatted as HH:MM (24h)")

// ParseTimeOfDay parses "HH:MM" (24h). "24:00" is accepted as the end of the day.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 || len(parts[1]) != 2 {
		return 0, ErrInvalidTimeOfDay
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, ErrInvalidTimeOfDay
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 || h < 0 || h > 24 || (h == 24 && m != 0) {
		return 0, ErrInvalidTimeOfDay
	}
	return TimeOfDay(h*60 + m), nil
}

// Clock returns the "HH:MM" (24h) form.
func (t TimeOfDay) Clock() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// String returns the 12-hour form, eg: "9:00 AM".
func (t TimeOfDay) String() string {
	h, m := (int(t)/60)%24, int(t)%60
	suffix := "AM"
	if h >= 12 {
		suffix = "PM"
	}
	h %= 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:%02d %s", h, m, suffix)
}

// MarshalText encodes t in its "HH:MM" form.
func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.Clock()), nil
}

func (t *TimeOfDay) UnmarshalText(text []byte) error {
	tod, err := ParseTimeOfDay(string(text))
	if err != nil {
		return err
	}
	*t = tod
	return nil
}
