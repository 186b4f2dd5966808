package session

import (
	"net/http"
	"net/url"
	"sync"
)

// sessionJar wraps the client's cookie jar. Once a token is pinned, jar
// cookies carrying the session name with any other value are withheld, so a
// request never presents two different session cookies.
type sessionJar struct {
	http.CookieJar
	name string

	mu     sync.Mutex
	pinned string
}

func (j *sessionJar) Cookies(u *url.URL) []*http.Cookie {
	all := j.CookieJar.Cookies(u)
	j.mu.Lock()
	pinned := j.pinned
	j.mu.Unlock()
	if pinned == "" {
		return all
	}
	out := make([]*http.Cookie, 0, len(all))
	for _, ck := range all {
		if ck.Name == j.name && ck.Value != pinned {
			continue
		}
		out = append(out, ck)
	}
	return out
}

func (j *sessionJar) pin(value string) {
	j.mu.Lock()
	j.pinned = value
	j.mu.Unlock()
}

// stored returns the named cookie the underlying jar holds for u, ignoring the pin.
func (j *sessionJar) stored(u *url.URL) (string, bool) {
	for _, ck := range j.CookieJar.Cookies(u) {
		if ck.Name == j.name && ck.Value != "" {
			return ck.Value, true
		}
	}
	return "", false
}

// holds reports whether the underlying jar would send the session cookie with value to u.
func (j *sessionJar) holds(u *url.URL, value string) bool {
	for _, ck := range j.CookieJar.Cookies(u) {
		if ck.Name == j.name && ck.Value == value {
			return true
		}
	}
	return false
}
