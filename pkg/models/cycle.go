package models

import (
	"fmt"
	"strconv"
)

// PeriodUnit is the unit of a cycle period.
type PeriodUnit uint8

const (
	PeriodDay      PeriodUnit = iota // "D"
	PeriodWeek                       // "W"
	PeriodMonth                      // "M"
	PeriodQuarter                    // "Q"
	PeriodHalfYear                   // "H"
	PeriodYear                       // "Y"
)

var periodUnitNames = map[PeriodUnit]string{
	PeriodDay: "D", PeriodWeek: "W", PeriodMonth: "M",
	PeriodQuarter: "Q", PeriodHalfYear: "H", PeriodYear: "Y",
}

var periodUnitCodes = invert(periodUnitNames)

func (u PeriodUnit) String() string {
	if s, ok := periodUnitNames[u]; ok {
		return s
	}
	return fmt.Sprintf("PeriodUnit(%d)", uint8(u))
}

// StubConvention controls how a cycle rollout handles a final (or initial)
// period that does not line up with the end date.
type StubConvention uint8

const (
	StubLong  StubConvention = iota // merge the trailing stub into the preceding period
	StubShort                       // keep the trailing stub as its own short period
)

// Cycle is a recurrence rule: every Count units of Unit, from an anchor
// date, with Stub deciding how a trailing partial period is handled.
// IsSet distinguishes "no recurrence configured" from a configured cycle —
// an unset cycle always yields an empty schedule, regardless of the other
// fields.
type Cycle struct {
	Count int
	Unit  PeriodUnit
	Stub  StubConvention
	IsSet bool
}

// NewCycle returns a configured cycle.
func NewCycle(count int, unit PeriodUnit, stub StubConvention) Cycle {
	return Cycle{Count: count, Unit: unit, Stub: stub, IsSet: true}
}

// String renders the cycle in ACTUS notation, e.g. "P3ML1" for every three
// months with a long trailing stub. An unset cycle renders as "".
func (c Cycle) String() string {
	if !c.IsSet {
		return ""
	}
	stub := "0"
	if c.Stub == StubLong {
		stub = "1"
	}
	return "P" + strconv.Itoa(c.Count) + c.Unit.String() + "L" + stub
}

// ParseCycle reads ACTUS cycle notation ("P<count><unit>L<0|1>"; the stub
// suffix is optional and defaults to a long stub). The empty string parses
// to the unset cycle.
func ParseCycle(s string) (Cycle, error) {
	if s == "" {
		return Cycle{}, nil
	}
	if len(s) < 3 || s[0] != 'P' {
		return Cycle{}, fmt.Errorf("malformed cycle %q", s)
	}
	body := s[1:]

	stub := StubLong
	if n := len(body); n >= 2 && body[n-2] == 'L' {
		switch body[n-1] {
		case '0':
			stub = StubShort
		case '1':
			stub = StubLong
		default:
			return Cycle{}, fmt.Errorf("malformed cycle stub in %q", s)
		}
		body = body[:n-2]
	}
	if len(body) < 2 {
		return Cycle{}, fmt.Errorf("malformed cycle %q", s)
	}

	unit, ok := periodUnitCodes[body[len(body)-1:]]
	if !ok {
		return Cycle{}, fmt.Errorf("unknown period unit in cycle %q", s)
	}
	count, err := strconv.Atoi(body[:len(body)-1])
	if err != nil || count < 0 {
		return Cycle{}, fmt.Errorf("malformed cycle count in %q", s)
	}
	return Cycle{Count: count, Unit: unit, Stub: stub, IsSet: true}, nil
}

func (c Cycle) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Cycle) UnmarshalText(b []byte) error {
	parsed, err := ParseCycle(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
