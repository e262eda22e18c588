package parser

import (
	"slices"
	"strconv"
	"strings"
)

// Validator decides whether a matched line is worth turning into an Event.
type Validator func(f Fields) bool

// LineParser couples a Decoder with a validation predicate.
type LineParser struct {
	Decoder  Decoder
	Validate Validator
}

func NewLineParser(d Decoder, v Validator) *LineParser {
	return &LineParser{Decoder: d, Validate: v}
}

// Parse returns ErrNoMatch or ErrRejected (both wrap ErrIgnored) for lines
// that should be dropped silently. Any other error comes from event
// construction.
func (p *LineParser) Parse(line []byte) (Event, error) {
	text := strings.ToValidUTF8(string(line), "\uFFFD")
	f, ok := p.Decoder.Match(text)
	if !ok {
		return Event{}, ErrNoMatch
	}
	if p.Validate != nil && !p.Validate(f) {
		return Event{}, ErrRejected
	}
	return p.Decoder.Construct(f)
}

// DefaultSkipPaths are request paths of static assets and health probes on
// the identity provider host.
var DefaultSkipPaths = []string{
	"/",
	"/favicon.ico",
	"/idp/css/main.css",
	"/idp/images/mhc-logo.png",
	"/idp/profile/admin/resolvertest",
	"/idp/shibboleth",
	"/idp/status",
	"/s1log_1s01_~0_e0",
	"/robots.txt",
}

// SkipConfig is the data behind the default Validator.
type SkipConfig struct {
	Paths []string
	// Lines with a status at or above MaxStatus are dropped. Zero disables
	// the check.
	MaxStatus int
}

func DefaultSkipConfig() SkipConfig {
	return SkipConfig{
		Paths:     slices.Clone(DefaultSkipPaths),
		MaxStatus: 400,
	}
}

func (c SkipConfig) Validator() Validator {
	skip := make(map[string]struct{}, len(c.Paths))
	for _, p := range c.Paths {
		skip[p] = struct{}{}
	}
	maxStatus := c.MaxStatus
	return func(f Fields) bool {
		path, _, _ := strings.Cut(f["path"], "?")
		if _, ok := skip[path]; ok {
			return false
		}
		if maxStatus > 0 {
			if s, ok := f["status"]; ok {
				status, err := strconv.Atoi(s)
				if err != nil || status >= maxStatus {
					return false
				}
			}
		}
		return true
	}
}
