package parser

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

func init() {
	newFunc := func() (Decoder, error) {
		return NginxJSONDecoder{}, nil
	}
	RegisterParser(ParserMeta{
		Name:        "nginx-json",
		Description: "nginx `log_format` emitting one JSON object per line",
		F:           newFunc,
	})
	RegisterParser(ParserMeta{
		Name:        "ngx_json",
		Description: "An alias for `nginx-json`",
		Hidden:      true,
		F:           newFunc,
	})
}

type NginxJSONLog struct {
	Size      uint64  `json:"size"`
	Client    string  `json:"clientip"`
	Method    string  `json:"method"`
	Url       string  `json:"url"`
	Status    int     `json:"status"`
	Timestamp float64 `json:"timestamp"`
	ServerIP  string  `json:"serverip"`
	Referer   string  `json:"referer"`
	Useragent string  `json:"user_agent"`
}

type NginxJSONDecoder struct{}

func (NginxJSONDecoder) Match(line string) (Fields, bool) {
	var logItem NginxJSONLog
	if err := json.Unmarshal([]byte(line), &logItem); err != nil {
		return nil, false
	}
	f := Fields{
		"client":  logItem.Client,
		"time":    strconv.FormatFloat(logItem.Timestamp, 'f', -1, 64),
		"method":  logItem.Method,
		"path":    logItem.Url,
		"bytes":   strconv.FormatUint(logItem.Size, 10),
		"referer": logItem.Referer,
		"agent":   logItem.Useragent,
		"server":  logItem.ServerIP,
	}
	if logItem.Status != 0 {
		f["status"] = strconv.Itoa(logItem.Status)
	}
	return f, true
}

func (NginxJSONDecoder) Construct(f Fields) (Event, error) {
	return eventFromFields(f, unixSecondsParse)
}

func unixSecondsParse(s string) (time.Time, error) {
	ts, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return time.Time{}, err
	}
	if ts <= 0 {
		return time.Time{}, fmt.Errorf("timestamp %q out of range", s)
	}
	sec, dec := math.Modf(ts)
	return time.Unix(int64(sec), int64(dec*1e9)), nil
}
