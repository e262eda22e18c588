package parser

import "regexp"

// Apache escapes `"` and `\` as `\"` and `\\`, nginx as `\xXX`; both are
// covered by the quoted-string groups below.
var (
	combinedPattern = regexp.MustCompile(`^(?P<client>\S+) \S+ \S+ \[(?P<time>[^\]]+)\] "(?P<method>[A-Za-z]+) (?P<path>\S+)(?: [^"]*)?" (?P<status>\d{3}) (?P<bytes>\d+|-) "(?P<referer>(?:[^"\\]|\\.)*)" "(?P<agent>(?:[^"\\]|\\.)*)"`)
	commonPattern   = regexp.MustCompile(`^(?P<client>\S+) \S+ \S+ \[(?P<time>[^\]]+)\] "(?P<method>[A-Za-z]+) (?P<path>\S+)(?: [^"]*)?" (?P<status>\d{3}) (?P<bytes>\d+|-)`)
)

func init() {
	combined := func() (Decoder, error) {
		return RegexDecoder{Pattern: combinedPattern}, nil
	}
	RegisterParser(ParserMeta{
		Name:        "combined",
		Description: "Apache/nginx combined log format",
		F:           combined,
	})
	RegisterParser(ParserMeta{
		Name:        "webserver",
		Description: "An alias for `combined`",
		Hidden:      true,
		F:           combined,
	})
	RegisterParser(ParserMeta{
		Name:        "nginx-combined",
		Description: "An alias for `combined`",
		Hidden:      true,
		F:           combined,
	})
	RegisterParser(ParserMeta{
		Name:        "common",
		Description: "NCSA common log format (no referer or user agent)",
		F: func() (Decoder, error) {
			return RegexDecoder{Pattern: commonPattern}, nil
		},
	})
}
