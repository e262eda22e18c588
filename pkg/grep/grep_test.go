package grep

import (
	"bytes"
	"net/netip"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/idptools/loopscan/pkg/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleLines = []string{
	`10.0.0.1 - - [01/Feb/2021:10:00:00 +0000] "GET /a HTTP/1.1" 200 10 "-" "Firefox"`,
	`10.0.1.7 - - [01/Feb/2021:10:05:00 +0000] "POST /b HTTP/1.1" 200 10 "-" "Safari"`,
	`this line is noise`,
	`192.168.1.1 - - [01/Feb/2021:11:00:00 +0000] "GET /a/b HTTP/1.1" 404 0 "-" "Firefox"`,
}

func TestParsePrefix(t *testing.T) {
	p, err := ParsePrefix("10.0.0.0/16")
	require.NoError(t, err)
	assert.Equal(t, netip.MustParsePrefix("10.0.0.0/16"), p)
	p, err = ParsePrefix("10.0.3.4/16")
	require.NoError(t, err)
	assert.Equal(t, netip.MustParsePrefix("10.0.0.0/16"), p)
	p, err = ParsePrefix("2001:db8::1")
	require.NoError(t, err)
	assert.Equal(t, 128, p.Bits())
	_, err = ParsePrefix("not-an-ip")
	assert.Error(t, err)
}

func TestFilterMatch(t *testing.T) {
	e := parser.Event{
		Client:    "10.0.1.7",
		Time:      time.Date(2021, 2, 1, 10, 5, 0, 0, time.UTC),
		Method:    "POST",
		Request:   "/idp/profile/SAML2/POST/SSO",
		Useragent: "Mozilla/5.0 Safari",
	}
	type testCase struct {
		filter   Filter
		expected error
	}
	testCases := []testCase{
		{Filter{}, nil},
		{Filter{Prefixes: []netip.Prefix{netip.MustParsePrefix("10.0.0.0/16")}}, nil},
		{Filter{Prefixes: []netip.Prefix{netip.MustParsePrefix("10.1.0.0/16")}}, ErrNoPrefixMatch},
		{Filter{RequestContains: []string{"SAML2"}}, nil},
		{Filter{RequestContains: []string{"Shibboleth.sso"}}, ErrRequestNoMatch},
		{Filter{AgentContains: []string{"Chrome", "Safari"}}, nil},
		{Filter{AgentContains: []string{"Chrome"}}, ErrAgentNoMatch},
		{Filter{Methods: []string{"post"}}, nil},
		{Filter{Methods: []string{"GET"}}, ErrMethodNoMatch},
		{Filter{TimeFrom: e.Time}, nil},
		{Filter{TimeTo: e.Time}, nil},
		{Filter{TimeFrom: e.Time.Add(time.Second)}, ErrTimeNoMatch},
		{Filter{TimeTo: e.Time.Add(-time.Second)}, ErrTimeNoMatch},
	}
	for i, c := range testCases {
		err := c.filter.Match(e)
		if c.expected == nil {
			assert.NoError(t, err, "case %d", i)
		} else {
			assert.ErrorIs(t, err, c.expected, "case %d", i)
		}
	}

	f := Filter{Prefixes: []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}}
	assert.ErrorIs(t, f.Match(parser.Event{Client: "unknown"}), ErrInvalidIP)
	assert.True(t, (&Filter{}).IsEmpty())
	assert.False(t, f.IsEmpty())
}

func TestGrepFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "access.log")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(sampleLines, "\n")+"\n"), 0o644))

	c := DefaultConfig()
	c.Filter.AgentContains = []string{"Firefox"}
	var out, logs bytes.Buffer
	g, err := New(c, &out, &logs)
	require.NoError(t, err)
	require.NoError(t, g.GrepFile(path))
	assert.Equal(t, sampleLines[0]+"\n"+sampleLines[3]+"\n", out.String())
	assert.Equal(t, 2, g.Matched())
	// noise does not match the pattern and is dropped silently
	assert.Empty(t, logs.String())

	_, err = New(GrepperConfig{Parser: "nope"}, &out, &logs)
	assert.ErrorIs(t, err, parser.ErrUnknownParser)
	assert.Error(t, g.GrepFile(filepath.Join(t.TempDir(), "missing.log")))
}
