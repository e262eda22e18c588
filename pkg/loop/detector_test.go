package loop

import (
	"testing"
	"time"

	"github.com/idptools/loopscan/pkg/parser"
	"github.com/idptools/loopscan/pkg/sequence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2021, 2, 1, 10, 0, 0, 0, time.UTC)

func ev(offset time.Duration, method, request string, status int) parser.Event {
	return parser.Event{
		Client:  "10.0.0.1",
		Time:    base.Add(offset),
		Method:  method,
		Request: request,
		Status:  status,
		Bytes:   100,
	}
}

func seqOf(events ...parser.Event) *sequence.Sequence {
	s := sequence.New(sequence.DefaultThreshold)
	for _, e := range events {
		s.Append(e)
	}
	return s
}

func TestDetectMiddleRun(t *testing.T) {
	events := []parser.Event{
		ev(0, "GET", "Redirect/SSO", 200),
		ev(1500*time.Millisecond, "POST", "POST/SSO", 200),
		ev(2*time.Second, "POST", "POST/SSO", 200),
		ev(3*time.Second, "POST", "POST/SSO", 200),
		ev(4*time.Second, "GET", "Redirect/SLO", 200),
	}
	loops := NewDetector(nil, nil).Detect(seqOf(events...))
	require.Len(t, loops, 1)
	run := loops[0]
	assert.Equal(t, "2021-02-01 10:00:01", run.Timecode)
	assert.Equal(t, 3, run.Len())
	assert.Equal(t, events[1:4], run.Events)
	assert.Equal(t, events[1], run.First())

	got, ok := loops.Get("2021-02-01 10:00:01")
	assert.True(t, ok)
	assert.Equal(t, run, got)
	_, ok = loops.Get("2021-02-01 10:00:00")
	assert.False(t, ok)
}

func TestDetectNoRepeats(t *testing.T) {
	loops := NewDetector(nil, nil).DetectEvents([]parser.Event{
		ev(0, "GET", "/a", 200),
		ev(time.Second, "GET", "/b", 200),
		ev(2*time.Second, "GET", "/a", 200),
	})
	assert.Empty(t, loops)
	assert.Empty(t, NewDetector(nil, nil).DetectEvents(nil))
}

func TestDetectSeparateRuns(t *testing.T) {
	events := []parser.Event{
		ev(0, "GET", "/a", 200),
		ev(time.Second, "GET", "/a", 200),
		ev(2*time.Second, "GET", "/b", 200),
		ev(3*time.Second, "GET", "/a", 200),
		ev(4*time.Second, "GET", "/a", 200),
		ev(5*time.Second, "GET", "/a", 200),
	}
	loops := NewDetector(nil, nil).DetectEvents(events)
	require.Len(t, loops, 2)
	assert.Equal(t, events[0:2], loops[0].Events)
	assert.Equal(t, "2021-02-01 10:00:00", loops[0].Timecode)
	assert.Equal(t, events[3:6], loops[1].Events)
	assert.Equal(t, "2021-02-01 10:00:03", loops[1].Timecode)
}

func TestDetectRunsStartingInSameSecond(t *testing.T) {
	events := []parser.Event{
		ev(0, "GET", "/a", 200),
		ev(100*time.Millisecond, "GET", "/a", 200),
		ev(200*time.Millisecond, "GET", "/b", 200),
		ev(300*time.Millisecond, "GET", "/b", 200),
	}
	loops := NewDetector(nil, nil).DetectEvents(events)
	require.Len(t, loops, 2)
	assert.Equal(t, loops[0].Timecode, loops[1].Timecode)
	assert.Equal(t, events[:2], loops[0].Events)
	assert.Equal(t, events[2:], loops[1].Events)
}

func TestDetectConstraintsSkipWithoutBreaking(t *testing.T) {
	events := []parser.Event{
		ev(0, "POST", "POST/SSO", 200),
		ev(time.Second, "GET", "Redirect/SSO", 200),
		ev(2*time.Second, "POST", "POST/SSO", 200),
		ev(3*time.Second, "POST", "POST/SSO", 302),
		ev(4*time.Second, "POST", "POST/SSO", 200),
	}
	d := NewDetector(Constraints{"method": "POST", "response": "200"}, nil)
	loops := d.Detect(seqOf(events...))
	require.Len(t, loops, 1)
	assert.Equal(t, []parser.Event{events[0], events[2], events[4]}, loops[0].Events)
	assert.Equal(t, "2021-02-01 10:00:00", loops[0].Timecode)

	// without constraints the interleaved GET breaks the run
	assert.Empty(t, NewDetector(nil, nil).Detect(seqOf(events...)))
}

func TestDetectUnknownConstraintField(t *testing.T) {
	c := Constraints{"cookie": "x"}
	assert.ErrorIs(t, c.Validate(), ErrUnknownField)
	events := []parser.Event{ev(0, "GET", "/a", 200), ev(time.Second, "GET", "/a", 200)}
	assert.Empty(t, NewDetector(c, nil).DetectEvents(events))
}

func TestDetectFieldProjection(t *testing.T) {
	events := []parser.Event{
		ev(0, "GET", "/a", 200),
		ev(time.Second, "GET", "/a", 302),
		ev(2*time.Second, "GET", "/a", 500),
	}
	assert.Empty(t, NewDetector(nil, nil).DetectEvents(events))

	p, err := FieldProjection("method", "request")
	require.NoError(t, err)
	loops := NewDetector(nil, p).DetectEvents(events)
	require.Len(t, loops, 1)
	assert.Equal(t, 3, loops[0].Len())

	_, err = FieldProjection("method", "cookie")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestDetectIdempotent(t *testing.T) {
	events := []parser.Event{
		ev(0, "POST", "POST/SSO", 200),
		ev(time.Second, "POST", "POST/SSO", 200),
		ev(2*time.Second, "GET", "/x", 200),
		ev(3*time.Second, "GET", "/x", 200),
	}
	s := seqOf(events...)
	d := NewDetector(Constraints{"status": "200"}, nil)
	first := d.Detect(s)
	second := d.Detect(s)
	assert.Equal(t, first, second)
	assert.Equal(t, events, s.Events())
}

func TestDetectRunInvariant(t *testing.T) {
	requests := []string{"/a", "/a", "/b", "/a", "/a", "/a", "/c", "/c", "/b"}
	var events []parser.Event
	for i, r := range requests {
		events = append(events, ev(time.Duration(i)*time.Second, "GET", r, 200))
	}
	loops := NewDetector(nil, nil).DetectEvents(events)
	total := 0
	for _, run := range loops {
		require.GreaterOrEqual(t, run.Len(), 2)
		for i := 1; i < run.Len(); i++ {
			assert.Equal(t, run.Events[i-1].String(), run.Events[i].String())
		}
		total += run.Len()
	}
	assert.Equal(t, 7, total)
}

func TestConstraintsString(t *testing.T) {
	assert.Equal(t, "method=POST,status=200", Constraints{"status": "200", "method": "POST"}.String())
	assert.Equal(t, "", Constraints(nil).String())
}
