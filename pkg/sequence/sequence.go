package sequence

import (
	"errors"
	"fmt"
	"time"

	"github.com/idptools/loopscan/pkg/parser"
)

// DefaultThreshold approximates the end of a browsing session.
const DefaultThreshold = 5 * time.Minute

var ErrUnknownKey = errors.New("unknown sequence key")

// Sequence is a run of one client's events where each event follows the
// previous one by at most the threshold.
type Sequence struct {
	events    []parser.Event
	threshold time.Duration
}

func New(threshold time.Duration) *Sequence {
	return &Sequence{threshold: threshold}
}

func (s *Sequence) Append(e parser.Event) {
	s.events = append(s.events, e)
}

func (s *Sequence) Events() []parser.Event {
	return s.events
}

func (s *Sequence) Len() int {
	return len(s.events)
}

func (s *Sequence) FirstTime() (time.Time, bool) {
	if len(s.events) == 0 {
		return time.Time{}, false
	}
	return s.events[0].Time, true
}

func (s *Sequence) LastTime() (time.Time, bool) {
	if len(s.events) == 0 {
		return time.Time{}, false
	}
	return s.events[len(s.events)-1].Time, true
}

// LimitTime is the latest time an event may have and still join the
// sequence.
func (s *Sequence) LimitTime() (time.Time, bool) {
	last, ok := s.LastTime()
	if !ok {
		return time.Time{}, false
	}
	return last.Add(s.threshold), true
}

// Accepts reports whether t falls within the limit. The limit itself is
// inclusive. An empty sequence accepts anything.
func (s *Sequence) Accepts(t time.Time) bool {
	limit, ok := s.LimitTime()
	return !ok || !t.After(limit)
}

// KeyFunc selects the identity events are grouped by.
type KeyFunc func(e parser.Event) string

func ByClient(e parser.Event) string { return e.Client }

func ByID(e parser.Event) string { return e.ID() }

var keyFuncs = map[string]KeyFunc{
	"client": ByClient,
	"ip":     ByClient,
	"id":     ByID,
}

func GetKeyFunc(name string) (KeyFunc, error) {
	fn, ok := keyFuncs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKey, name)
	}
	return fn, nil
}
