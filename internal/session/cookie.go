package session

import "strings"

// Cookie is one name/value pair read from a Set-Cookie header. Attributes
// (Path, Domain, Expires, ...) are dropped: only the pair is needed to replay
// the cookie on later requests.
type Cookie struct {
	Name  string
	Value string
}

// ParseSetCookie parses a raw Set-Cookie header value. A single line may hold
// several cookies folded together with commas; commas inside Expires dates
// are not treated as separators.
func ParseSetCookie(line string) []Cookie {
	var out []Cookie
	for _, part := range splitFolded(line) {
		pair := part
		if i := strings.IndexByte(pair, ';'); i >= 0 {
			pair = pair[:i]
		}
		eq := strings.IndexByte(pair, '=')
		if eq <= 0 {
			continue
		}
		name := strings.TrimSpace(pair[:eq])
		if !isToken(name) {
			continue
		}
		value := strings.TrimSpace(pair[eq+1:])
		if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
			value = value[1 : len(value)-1]
		}
		out = append(out, Cookie{Name: name, Value: value})
	}
	return out
}

// TokenFromSetCookie looks for the named cookie across raw Set-Cookie header
// values. The last occurrence wins; an empty value counts as absent.
func TokenFromSetCookie(headers []string, name string) (string, bool) {
	found := ""
	for _, h := range headers {
		for _, c := range ParseSetCookie(h) {
			if c.Name == name {
				found = c.Value
			}
		}
	}
	return found, found != ""
}

// splitFolded splits on commas that start a new name=value pair.
func splitFolded(line string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(line); i++ {
		if line[i] != ',' {
			continue
		}
		if startsCookie(line[i+1:]) {
			parts = append(parts, line[start:i])
			start = i + 1
		}
	}
	return append(parts, line[start:])
}

func startsCookie(s string) bool {
	s = strings.TrimLeft(s, " \t")
	eq := strings.IndexByte(s, '=')
	if eq <= 0 {
		return false
	}
	return isToken(s[:eq])
}

// isToken reports whether s is a valid cookie name (RFC 6265 token).
func isToken(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c <= ' ' || c >= 0x7f || strings.IndexByte(`()<>@,;:\"/[]?={}`, c) >= 0 {
			return false
		}
	}
	return true
}
