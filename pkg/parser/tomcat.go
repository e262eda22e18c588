package parser

import (
	"fmt"
	"net/url"
	"regexp"
)

var (
	tomcatPattern = regexp.MustCompile(`^(?P<client>\d+\.\d+\.\d+\.\d+) - - \[(?P<time>.*?)\] "(?P<method>\w+) (?P<path>.+?) HTTP/.*?" (?P<status>\d+) (?P<bytes>.+?) "(?P<referer>.+?)" "(?P<agent>.+?)"`)

	// binding, profile, query
	saml2Path = regexp.MustCompile(`^/idp/profile/SAML2/(Redirect|POST)/(S[LS]O)(?:\?(.*))?$`)
)

func init() {
	RegisterParser(ParserMeta{
		Name:        "tomcat",
		Description: "Tomcat access log of a SAML2 identity provider",
		F: func() (Decoder, error) {
			return RegexDecoder{Pattern: tomcatPattern, Build: buildTomcatEvent}, nil
		},
	})
}

func buildTomcatEvent(f Fields) (Event, error) {
	request, err := normalizeSAML2Request(f["path"])
	if err != nil {
		return Event{}, err
	}
	e, err := eventFromFields(f, clfDateParse)
	if err != nil {
		return Event{}, err
	}
	e.Request = request
	return e, nil
}

// normalizeSAML2Request reduces a profile URL to "<binding>/<profile>" and
// keeps only the part of the query string that tells requests apart.
func normalizeSAML2Request(path string) (string, error) {
	m := saml2Path.FindStringSubmatch(path)
	if m == nil {
		return "", fmt.Errorf("unrecognized request path %q", path)
	}
	request := m[1] + "/" + m[2]
	query := parseQuery(m[3])
	if len(query) == 0 {
		return request, nil
	}
	request += "?"
	if query.Has("SAMLRequest") {
		request += "SAMLRequest"
	} else if query.Has("execution") {
		request += "execution=" + query.Get("execution")
	}
	return request, nil
}

// parseQuery is lenient: malformed pairs are skipped and keys with only
// blank values are dropped.
func parseQuery(raw string) url.Values {
	query, _ := url.ParseQuery(raw)
	for key, values := range query {
		blank := true
		for _, v := range values {
			if v != "" {
				blank = false
				break
			}
		}
		if blank {
			delete(query, key)
		}
	}
	return query
}
