package loop

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/idptools/loopscan/pkg/parser"
	"github.com/idptools/loopscan/pkg/sequence"
)

const TimecodeFormat = time.DateTime

var ErrUnknownField = errors.New("unknown event field")

// Constraints restricts detection to events whose named fields equal the
// given values. Events lacking a field are not eligible.
type Constraints map[string]string

func (c Constraints) Validate() error {
	for name := range c {
		if !parser.ValidField(name) {
			return fmt.Errorf("%w: %s", ErrUnknownField, name)
		}
	}
	return nil
}

func (c Constraints) Eligible(e parser.Event) bool {
	for name, want := range c {
		got, ok := e.Field(name)
		if !ok || got != want {
			return false
		}
	}
	return true
}

func (c Constraints) String() string {
	pairs := make([]string, 0, len(c))
	for name, value := range c {
		pairs = append(pairs, name+"="+value)
	}
	slices.Sort(pairs)
	return strings.Join(pairs, ",")
}

// Projection gives the representation two events are compared by.
type Projection func(e parser.Event) string

// FullProjection compares events by their whole display form.
func FullProjection(e parser.Event) string {
	return e.String()
}

// FieldProjection compares events by the listed fields only.
func FieldProjection(fields ...string) (Projection, error) {
	if len(fields) == 0 {
		return FullProjection, nil
	}
	for _, name := range fields {
		if !parser.ValidField(name) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownField, name)
		}
	}
	return func(e parser.Event) string {
		values := make([]string, len(fields))
		for i, name := range fields {
			values[i], _ = e.Field(name)
		}
		// unit separator keeps "a b"+"c" apart from "a"+"b c"
		return strings.Join(values, "\x1f")
	}, nil
}

// Run is a maximal stretch of consecutive eligible events sharing one
// representation. It always holds at least two events.
type Run struct {
	Timecode string
	Events   []parser.Event
}

func (r Run) Len() int {
	return len(r.Events)
}

func (r Run) First() parser.Event {
	return r.Events[0]
}

// Loops are the runs of one sequence, ordered by start.
type Loops []Run

// Get returns the first run starting at timecode.
func (l Loops) Get(timecode string) (Run, bool) {
	for _, r := range l {
		if r.Timecode == timecode {
			return r, true
		}
	}
	return Run{}, false
}

type Detector struct {
	Constraints Constraints
	Projection  Projection
}

func NewDetector(c Constraints, p Projection) Detector {
	if p == nil {
		p = FullProjection
	}
	return Detector{Constraints: c, Projection: p}
}

func (d Detector) Detect(s *sequence.Sequence) Loops {
	return d.DetectEvents(s.Events())
}

// DetectEvents scans events in order. Ineligible events are invisible to
// the comparison: they neither extend nor break a run.
func (d Detector) DetectEvents(events []parser.Event) Loops {
	project := d.Projection
	if project == nil {
		project = FullProjection
	}

	var (
		loops    Loops
		previous parser.Event
		prevRepr string
		hasPrev  bool
		// index into loops of the run started by previous, -1 if none
		current = -1
	)
	for _, e := range events {
		if !d.Constraints.Eligible(e) {
			continue
		}
		repr := project(e)
		if hasPrev && repr == prevRepr {
			if current < 0 {
				loops = append(loops, Run{
					Timecode: previous.Time.Format(TimecodeFormat),
					Events:   []parser.Event{previous},
				})
				current = len(loops) - 1
			}
			loops[current].Events = append(loops[current].Events, e)
			continue
		}
		previous, prevRepr, hasPrev = e, repr, true
		current = -1
	}
	return loops
}
