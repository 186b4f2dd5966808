package session

import (
	"context"
	"fmt"
	"strings"
)

// Authenticate logs in with the configured encoding.
func (c *Client) Authenticate(ctx context.Context, creds Credentials) (SessionToken, error) {
	return c.AuthenticateWith(ctx, creds, c.cfg.LoginEncoding)
}

// AuthenticateWith logs in with an explicit body encoding and returns the
// session token. The token is looked up in the cookie jar first and then in
// the raw Set-Cookie headers of the login response.
func (c *Client) AuthenticateWith(ctx context.Context, creds Credentials, enc Encoding) (SessionToken, error) {
	if strings.TrimSpace(creds.Email) == "" || creds.Password == "" {
		return SessionToken{}, fmt.Errorf("%s: email and password are required", OpLogin)
	}
	loginURL := c.endpoint(c.cfg.LoginPath)
	log := c.logger.WithStep(OpLogin).WithRequest("POST", loginURL)

	req := c.http.R().SetContext(ensureContext(ctx))
	switch enc {
	case EncodingForm:
		req.SetFormData(map[string]string{"email": creds.Email, "password": creds.Password})
	case EncodingJSON:
		req.SetHeader("Content-Type", "application/json").
			SetBody(map[string]string{"email": creds.Email, "password": creds.Password})
	default:
		return SessionToken{}, fmt.Errorf("%s: unsupported encoding %q", OpLogin, enc)
	}

	log.Debug("sending login request", "encoding", string(enc), "email", creds.Email)
	resp, err := req.Post(loginURL)
	if err != nil {
		return SessionToken{}, &TransportError{Op: OpLogin, Err: err}
	}
	res := newResult(resp)
	if !res.Success() {
		log.Warn("login rejected", "status", res.StatusCode)
		return SessionToken{}, rejected(OpLogin, res, ErrLoginRejected)
	}

	// Only a cookie set by this response counts. The jar may still hold the
	// token of an earlier login.
	raw := resp.Header().Values("Set-Cookie")
	issued, ok := TokenFromSetCookie(raw, c.cfg.CookieName)
	if !ok {
		return SessionToken{}, fmt.Errorf("%s: cookie %q not set by login response (status %d): %w",
			OpLogin, c.cfg.CookieName, res.StatusCode, ErrTokenMissing)
	}
	if c.jarHolds(loginURL, issued) {
		log.Debug("session cookie found in jar", "cookie_name", c.cfg.CookieName)
		return SessionToken{Value: issued, Source: SourceJar}, nil
	}
	log.Debug("session cookie not in jar, using Set-Cookie", "cookie_name", c.cfg.CookieName, "set-cookie", strings.Join(raw, " | "))
	return SessionToken{Value: issued, Source: SourceSetCookie}, nil
}
