package grep

import (
	"errors"
	"fmt"
	"net/netip"
	"slices"
	"strings"
	"time"

	"github.com/idptools/loopscan/pkg/parser"
	"github.com/spf13/pflag"
)

// Filter selects events by client network, request and agent substrings,
// method and time window. Empty criteria match everything.
type Filter struct {
	Prefixes        []netip.Prefix
	RequestContains []string
	AgentContains   []string
	Methods         []string
	TimeFrom        time.Time
	TimeTo          time.Time
}

var timeFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.DateTime,
	time.DateOnly,
	"20060102150405",
	"02/Jan/2006:15:04:05 -0700",
}

// ParsePrefix accepts a CIDR range or a single address.
func ParsePrefix(value string) (netip.Prefix, error) {
	if strings.Contains(value, "/") {
		p, err := netip.ParsePrefix(value)
		if err != nil {
			return netip.Prefix{}, err
		}
		return p.Masked(), nil
	}
	addr, err := netip.ParseAddr(value)
	if err != nil {
		return netip.Prefix{}, err
	}
	return netip.PrefixFrom(addr, addr.BitLen()), nil
}

func (f *Filter) InstallFlags(flags *pflag.FlagSet) {
	flags.Func("ip", "IP or CIDR range (can be specified multiple times)",
		func(value string) error {
			p, err := ParsePrefix(value)
			if err != nil {
				return err
			}
			f.Prefixes = append(f.Prefixes, p)
			return nil
		})
	flags.StringArrayVar(&f.RequestContains, "url-contains", f.RequestContains, "Request substring to filter (can be specified multiple times)")
	flags.StringArrayVar(&f.AgentContains, "agent-contains", f.AgentContains, "User agent substring to filter (can be specified multiple times)")
	flags.StringSliceVar(&f.Methods, "method", f.Methods, "HTTP methods to keep")
	flags.TimeVar(&f.TimeFrom, "time-from", f.TimeFrom, timeFormats, "Start time to filter (inclusive)")
	flags.TimeVar(&f.TimeTo, "time-to", f.TimeTo, timeFormats, "End time to filter (inclusive)")
}

func (f *Filter) IsEmpty() bool {
	return len(f.Prefixes) == 0 && len(f.RequestContains) == 0 && len(f.AgentContains) == 0 &&
		len(f.Methods) == 0 && f.TimeFrom.IsZero() && f.TimeTo.IsZero()
}

var (
	ErrInvalidIP      = errors.New("invalid client IP")
	ErrNoPrefixMatch  = errors.New("no matching prefix")
	ErrRequestNoMatch = errors.New("request does not match")
	ErrAgentNoMatch   = errors.New("user agent does not match")
	ErrMethodNoMatch  = errors.New("method does not match")
	ErrTimeNoMatch    = errors.New("time does not match")
)

func containsAny(s string, substrs []string) bool {
	return slices.ContainsFunc(substrs, func(sub string) bool {
		return strings.Contains(s, sub)
	})
}

// Match returns nil when e passes every configured criterion.
func (f *Filter) Match(e parser.Event) error {
	if len(f.Prefixes) > 0 {
		ip, err := netip.ParseAddr(e.Client)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidIP, err)
		}
		if !slices.ContainsFunc(f.Prefixes, func(p netip.Prefix) bool { return p.Contains(ip) }) {
			return ErrNoPrefixMatch
		}
	}
	if len(f.RequestContains) > 0 && !containsAny(e.Request, f.RequestContains) {
		return ErrRequestNoMatch
	}
	if len(f.AgentContains) > 0 && !containsAny(e.Useragent, f.AgentContains) {
		return ErrAgentNoMatch
	}
	if len(f.Methods) > 0 && !slices.ContainsFunc(f.Methods, func(m string) bool { return strings.EqualFold(m, e.Method) }) {
		return ErrMethodNoMatch
	}
	if !f.TimeFrom.IsZero() && e.Time.Before(f.TimeFrom) {
		return ErrTimeNoMatch
	}
	if !f.TimeTo.IsZero() && e.Time.After(f.TimeTo) {
		return ErrTimeNoMatch
	}
	return nil
}
