package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

const CommonLogFormat = "02/Jan/2006:15:04:05 -0700"

func clfDateParse(s string) (time.Time, error) {
	return time.Parse(CommonLogFormat, s)
}

// RegexDecoder matches lines against a pattern with named capture groups.
// Build turns the captured groups into an Event.
type RegexDecoder struct {
	Pattern *regexp.Regexp
	Build   func(f Fields) (Event, error)
}

func (d RegexDecoder) Match(line string) (Fields, bool) {
	m := d.Pattern.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}
	f := make(Fields, len(m))
	for i, name := range d.Pattern.SubexpNames() {
		if name != "" {
			f[name] = m[i]
		}
	}
	return f, true
}

func (d RegexDecoder) Construct(f Fields) (Event, error) {
	if d.Build == nil {
		return eventFromFields(f, clfDateParse)
	}
	return d.Build(f)
}

// parseBytes accepts "-" for responses without a body.
func parseBytes(s string) (uint64, error) {
	if s == "-" || s == "" {
		return 0, nil
	}
	return strconv.ParseUint(s, 10, 64)
}

// eventFromFields fills the fields shared by every web server format.
// Status and bytes are optional; time is not.
func eventFromFields(f Fields, parseTime func(string) (time.Time, error)) (Event, error) {
	t, err := parseTime(f["time"])
	if err != nil {
		return Event{}, fmt.Errorf("invalid time: %w", err)
	}
	var status int
	if s := f["status"]; s != "" {
		status, err = strconv.Atoi(s)
		if err != nil {
			return Event{}, fmt.Errorf("invalid status: %w", err)
		}
	}
	size, err := parseBytes(f["bytes"])
	if err != nil {
		return Event{}, fmt.Errorf("invalid size: %w", err)
	}
	return Event{
		Client:    f["client"],
		Time:      t,
		Method:    f["method"],
		Request:   f["path"],
		Status:    status,
		Bytes:     size,
		Referer:   f["referer"],
		Useragent: f["agent"],
		Server:    f["server"],
	}, nil
}
