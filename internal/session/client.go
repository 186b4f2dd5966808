// Package session implements the login → authenticated upload → profile check
// client used by the smoke workflow. The session token travels as a cookie;
// when the login cookie is scoped so the client's jar will not replay it, the
// token is read from the raw Set-Cookie header and attached by hand.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-resty/resty/v2"
	"github.com/loykin/mediasmoke/internal/common"
	"github.com/loykin/mediasmoke/internal/constants"
	"github.com/loykin/mediasmoke/internal/httpc"
	"github.com/loykin/mediasmoke/internal/util"
)

// Encoding selects how credentials are sent to the login endpoint.
type Encoding string

const (
	EncodingForm Encoding = constants.EncodingForm
	EncodingJSON Encoding = constants.EncodingJSON
)

// ParseEncoding accepts "form" or "json"; empty means form.
func ParseEncoding(s string) (Encoding, error) {
	switch util.TrimAndLower(s) {
	case "", constants.EncodingForm, "urlencoded":
		return EncodingForm, nil
	case constants.EncodingJSON:
		return EncodingJSON, nil
	default:
		return "", fmt.Errorf("invalid login encoding: %s (valid: form, json)", s)
	}
}

// Config holds everything the client needs to reach the service.
type Config struct {
	BaseURL       string
	CookieName    string
	LoginPath     string
	LoginEncoding Encoding
	UploadPath    string
	VerifyPath    string
}

// Client is the authenticated upload client. It owns one resty client and its
// cookie jar for the lifetime of a run.
type Client struct {
	cfg    Config
	http   *resty.Client
	jar    *sessionJar
	logger *common.Logger
}

// New validates cfg and builds a Client. A nil hc gets a default resty client
// with a cookie jar. When hc carries a jar, New wraps it so stale session
// cookies are not replayed; a Client is not safe for concurrent use.
func New(cfg Config, hc *resty.Client) (*Client, error) {
	base, ok := util.TrimEmptyCheck(cfg.BaseURL)
	if !ok {
		return nil, errors.New("session: base_url is required")
	}
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("session: invalid base_url %q", cfg.BaseURL)
	}
	cfg.BaseURL = base
	cfg.CookieName = util.TrimWithDefault(cfg.CookieName, constants.DefaultCookieName)
	cfg.LoginPath = util.TrimWithDefault(cfg.LoginPath, constants.DefaultLoginPath)
	cfg.VerifyPath = util.TrimWithDefault(cfg.VerifyPath, constants.DefaultVerifyPath)
	cfg.UploadPath = util.TrimWithDefault(cfg.UploadPath, constants.AvatarUploadPath)
	if cfg.LoginEncoding == "" {
		cfg.LoginEncoding = EncodingForm
	}
	if hc == nil {
		hc = (&httpc.Httpc{}).New()
	}
	var jar *sessionJar
	if inner := hc.GetClient().Jar; inner != nil {
		if sj, ok := inner.(*sessionJar); ok && sj.name == cfg.CookieName {
			jar = sj
		} else {
			jar = &sessionJar{CookieJar: inner, name: cfg.CookieName}
			hc.SetCookieJar(jar)
		}
	}
	return &Client{
		cfg:    cfg,
		http:   hc,
		jar:    jar,
		logger: common.GetLogger().WithComponent("session"),
	}, nil
}

// Config returns the normalized configuration.
func (c *Client) Config() Config { return c.cfg }

func (c *Client) endpoint(path string) string { return util.JoinURL(c.cfg.BaseURL, path) }

// jarToken returns the session cookie the jar holds for rawURL.
func (c *Client) jarToken(rawURL string) (string, bool) {
	if c.jar == nil {
		return "", false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	return c.jar.stored(u)
}

// jarHolds reports whether the jar carries value as the session cookie for rawURL.
func (c *Client) jarHolds(rawURL, value string) bool {
	if c.jar == nil || value == "" {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return c.jar.holds(u, value)
}

// authorize makes token the only session cookie on req. The jar is pinned to
// token so it withholds other values; the cookie is attached by hand unless
// the jar already holds the same value for rawURL.
func (c *Client) authorize(req *resty.Request, rawURL string, token SessionToken) {
	if c.jar != nil {
		c.jar.pin(token.Value)
	}
	if c.jarHolds(rawURL, token.Value) {
		return
	}
	req.SetCookie(&http.Cookie{Name: c.cfg.CookieName, Value: token.Value})
}

func ensureContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
