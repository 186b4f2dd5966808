package session

import (
	"context"
	"fmt"
)

// VerifySession reads the profile with the session cookie. It only observes;
// a failure here says nothing about whether an earlier upload is undone.
func (c *Client) VerifySession(ctx context.Context, token SessionToken) (*Result, error) {
	if token.Empty() {
		return nil, fmt.Errorf("%s: %w", OpVerify, ErrTokenMissing)
	}
	verifyURL := c.endpoint(c.cfg.VerifyPath)
	req := c.http.R().SetContext(ensureContext(ctx))
	c.authorize(req, verifyURL, token)

	resp, err := req.Get(verifyURL)
	if err != nil {
		return nil, &TransportError{Op: OpVerify, Err: err}
	}
	res := newResult(resp)
	if !res.Success() {
		c.logger.WithStep(OpVerify).Warn("profile check rejected", "status", res.StatusCode)
		return res, rejected(OpVerify, res, ErrVerifyRejected)
	}
	return res, nil
}
