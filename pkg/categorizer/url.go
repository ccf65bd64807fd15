package categorizer

import (
	"errors"
	"strings"

	ruleErrors "mercator-hq/urlcat/pkg/rules/errors"
)

// errBadIPv6 reports an unbalanced bracket in the authority.
var errBadIPv6 = errors.New("invalid IPv6 URL")

// URL is a URL decomposed into the components predicates can select.
// Absent components are empty strings.
type URL struct {
	Raw       string
	Scheme    string
	Hostname  string
	Path      string
	Query     string
	PathQuery string // Path, plus "?" and Query when Query is not empty
}

// Decompose splits raw into its selectable components.
//
// Components are cut from the raw text without unescaping or validation:
// malformed escapes, spaces and other characters a strict parser rejects
// are kept verbatim. Path parameters (";params" on the last segment) are
// not part of the path. Only an unbalanced IPv6 bracket in the authority
// fails.
func Decompose(raw string) (*URL, error) {
	rest := strings.Map(func(r rune) rune {
		if r == '\t' || r == '\r' || r == '\n' {
			return -1
		}
		return r
	}, strings.TrimLeftFunc(raw, func(r rune) bool { return r <= ' ' }))

	u := &URL{Raw: raw}
	u.Scheme, rest = splitScheme(rest)

	var authority string
	if strings.HasPrefix(rest, "//") {
		rest = rest[2:]
		end := strings.IndexAny(rest, "/?#")
		if end < 0 {
			end = len(rest)
		}
		authority, rest = rest[:end], rest[end:]
		if strings.Contains(authority, "[") != strings.Contains(authority, "]") {
			return nil, &ruleErrors.EvaluationError{URL: raw, Err: errBadIPv6}
		}
	}

	rest, _, _ = strings.Cut(rest, "#")
	path, query, _ := strings.Cut(rest, "?")

	u.Hostname = hostname(authority)
	u.Path = stripParams(path)
	u.Query = query
	u.PathQuery = u.Path
	if query != "" {
		u.PathQuery += "?" + query
	}
	return u, nil
}

// splitScheme cuts a leading "scheme:" off s. The scheme must start with an
// ASCII letter and contain only letters, digits, '+', '-' and '.'.
func splitScheme(s string) (string, string) {
	i := strings.IndexByte(s, ':')
	if i <= 0 || !isASCIILetter(s[0]) {
		return "", s
	}
	for j := 1; j < i; j++ {
		c := s[j]
		if !isASCIILetter(c) && !('0' <= c && c <= '9') && c != '+' && c != '-' && c != '.' {
			return "", s
		}
	}
	return strings.ToLower(s[:i]), s[i+1:]
}

func isASCIILetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// hostname extracts the lower-cased host of an authority, dropping
// userinfo, port and IPv6 brackets.
func hostname(authority string) string {
	if i := strings.LastIndexByte(authority, '@'); i >= 0 {
		authority = authority[i+1:]
	}
	if strings.HasPrefix(authority, "[") {
		if end := strings.IndexByte(authority, ']'); end > 0 {
			return strings.ToLower(authority[1:end])
		}
	}
	host, _, _ := strings.Cut(authority, ":")
	return strings.ToLower(host)
}

// stripParams removes ";params" from the last path segment.
func stripParams(path string) string {
	last := strings.LastIndexByte(path, '/')
	if i := strings.IndexByte(path[last+1:], ';'); i >= 0 {
		return path[:last+1+i]
	}
	return path
}

// Component returns the component named by selector, resolving aliases.
func (u *URL) Component(selector string) (string, bool) {
	switch selector {
	case "host", "hostname", "domain":
		return u.Hostname, true
	case "proto", "protocol", "scheme":
		return u.Scheme, true
	case "url":
		return u.Raw, true
	case "path":
		return u.Path, true
	case "query":
		return u.Query, true
	case "pathquery":
		return u.PathQuery, true
	default:
		return "", false
	}
}
