package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Event is one parsed access log line. It is passed by value and never
// modified after construction.
type Event struct {
	Client    string
	Time      time.Time
	Method    string
	Request   string
	Status    int
	Bytes     uint64
	Referer   string
	Useragent string
	Server    string
}

// ID is the composite identity of a client: address and user agent.
func (e Event) ID() string {
	return e.Client + " " + e.Useragent
}

func (e Event) String() string {
	return fmt.Sprintf("%-4s %-27s %d %5d", e.Method, e.Request, e.Status, e.Bytes)
}

var fieldNames = map[string]string{
	"client":    "client",
	"id":        "id",
	"method":    "method",
	"request":   "request",
	"path":      "request",
	"status":    "status",
	"response":  "status",
	"bytes":     "bytes",
	"size":      "bytes",
	"referer":   "referer",
	"agent":     "agent",
	"browser":   "agent",
	"useragent": "agent",
	"server":    "server",
}

// ValidField reports whether name can be passed to Event.Field.
func ValidField(name string) bool {
	_, ok := fieldNames[strings.ToLower(name)]
	return ok
}

// FieldNames returns the canonical field names, sorted.
func FieldNames() []string {
	return []string{"agent", "bytes", "client", "id", "method", "referer", "request", "server", "status"}
}

// Field returns the string form of the named field. The second result is
// false when the record has no such field.
func (e Event) Field(name string) (string, bool) {
	switch fieldNames[strings.ToLower(name)] {
	case "client":
		return e.Client, true
	case "id":
		return e.ID(), true
	case "method":
		return e.Method, true
	case "request":
		return e.Request, true
	case "status":
		return strconv.Itoa(e.Status), true
	case "bytes":
		return strconv.FormatUint(e.Bytes, 10), true
	case "referer":
		return e.Referer, true
	case "agent":
		return e.Useragent, true
	case "server":
		return e.Server, true
	}
	return "", false
}

// Fields holds the named groups a Decoder extracted from one line.
type Fields map[string]string

// Decoder turns the text of one line into an Event in two steps: Match
// applies the source's fixed pattern, Construct builds the record. Construct
// may still fail when the payload makes no sense for the source.
type Decoder interface {
	Match(line string) (Fields, bool)
	Construct(f Fields) (Event, error)
}

type NewFunc func() (Decoder, error)

type ParserMeta struct {
	Name        string
	Description string
	Hidden      bool
	F           NewFunc
}

var (
	// ErrIgnored marks lines that are dropped without a diagnostic.
	ErrIgnored  = errors.New("ignored")
	ErrNoMatch  = fmt.Errorf("%w: pattern does not match", ErrIgnored)
	ErrRejected = fmt.Errorf("%w: rejected by validator", ErrIgnored)

	ErrUnknownParser = errors.New("unknown parser")

	registry = make(map[string]ParserMeta)
)

func RegisterParser(meta ParserMeta) {
	registry[meta.Name] = meta
}

func GetParser(name string) (Decoder, error) {
	meta, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownParser, name)
	}
	return meta.F()
}

func All() []ParserMeta {
	all := make([]ParserMeta, 0, len(registry))
	for _, meta := range registry {
		all = append(all, meta)
	}
	return all
}
