package analyze

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"golang.org/x/term"
)

type FormatFlag string

const (
	FormatText  FormatFlag = "text"
	FormatTable FormatFlag = "table"
	FormatJSON  FormatFlag = "json"
)

func (f FormatFlag) String() string {
	return string(f)
}

func (f *FormatFlag) Set(value string) error {
	switch value {
	case "text", "plain":
		*f = FormatText
	case "table":
		*f = FormatTable
	case "json":
		*f = FormatJSON
	default:
		return errors.New(`must be one of "text", "table" or "json"`)
	}
	return nil
}

func (f FormatFlag) Type() string {
	return "string"
}

type ProgressFlag string

const (
	ProgressAuto   ProgressFlag = "auto"
	ProgressAlways ProgressFlag = "always"
	ProgressNever  ProgressFlag = "never"
)

func (p ProgressFlag) String() string {
	return string(p)
}

func (p *ProgressFlag) Set(value string) error {
	switch value {
	case "auto":
		*p = ProgressAuto
	case "always", "yes", "true":
		*p = ProgressAlways
	case "never", "no", "false":
		*p = ProgressNever
	default:
		return errors.New(`must be one of "auto", "always" or "never"`)
	}
	return nil
}

func (p ProgressFlag) Type() string {
	return "string"
}

// Enabled resolves "auto" by checking whether f is a terminal.
func (p ProgressFlag) Enabled(f *os.File) bool {
	switch p {
	case ProgressAlways:
		return true
	case ProgressNever:
		return false
	}
	return f != nil && term.IsTerminal(int(f.Fd()))
}

// whereValue collects field=value pairs into a map. An empty value (or
// "none") clears the map so no constraint applies.
type whereValue struct {
	m       *map[string]string
	changed bool
}

func newWhereValue(m *map[string]string) *whereValue {
	return &whereValue{m: m}
}

func (w *whereValue) String() string {
	if w.m == nil {
		return ""
	}
	pairs := make([]string, 0, len(*w.m))
	for k, v := range *w.m {
		pairs = append(pairs, k+"="+v)
	}
	slices.Sort(pairs)
	return strings.Join(pairs, ",")
}

func (w *whereValue) Set(value string) error {
	if !w.changed {
		*w.m = make(map[string]string)
		w.changed = true
	}
	if value == "" || value == "none" {
		clear(*w.m)
		return nil
	}
	for _, pair := range strings.Split(value, ",") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return fmt.Errorf("%q must be formatted as field=value", pair)
		}
		(*w.m)[k] = v
	}
	return nil
}

func (w *whereValue) Type() string {
	return "field=value"
}
