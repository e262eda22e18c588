package parser

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/taoky/goaccessfmt/pkg/goaccessfmt"
)

const goaccessConfigEnv = "GOACCESS_CONFIG"

func init() {
	RegisterParser(ParserMeta{
		Name:        "goaccess",
		Description: "Any format goaccess understands (set GOACCESS_CONFIG)",
		Hidden:      true,
		F: func() (Decoder, error) {
			return NewGoAccessDecoder(os.Getenv(goaccessConfigEnv))
		},
	})
}

type GoAccessDecoder struct {
	conf goaccessfmt.Config
}

func NewGoAccessDecoder(confFile string) (GoAccessDecoder, error) {
	file, err := os.Open(confFile)
	if err != nil {
		return GoAccessDecoder{}, fmt.Errorf("goaccess init failed (you might need to set %s): %w", goaccessConfigEnv, err)
	}
	defer file.Close()
	conf, err := goaccessfmt.ParseConfigReader(file)
	if err != nil {
		return GoAccessDecoder{}, err
	}
	return GoAccessDecoder{conf: conf}, nil
}

func (d GoAccessDecoder) Match(line string) (Fields, bool) {
	item, err := goaccessfmt.ParseLine(d.conf, line)
	if err != nil {
		return nil, false
	}
	f := Fields{
		"client":  item.Host,
		"time":    item.Dt.Format(time.RFC3339Nano),
		"method":  item.Method,
		"path":    item.Req,
		"bytes":   strconv.FormatUint(item.RespSize, 10),
		"referer": item.Ref,
		"agent":   item.Agent,
		"server":  item.Server,
	}
	if item.Status != 0 {
		f["status"] = strconv.Itoa(item.Status)
	}
	return f, true
}

func (d GoAccessDecoder) Construct(f Fields) (Event, error) {
	return eventFromFields(f, func(s string) (time.Time, error) {
		return time.Parse(time.RFC3339Nano, s)
	})
}
