// Package workflow runs the smoke sequence: authenticate, upload, verify.
// Only a login failure stops the run; upload and verify failures are
// reported and recorded so the operator sees every step.
package workflow

import (
	"context"
	"errors"

	"github.com/loykin/mediasmoke/internal/common"
	"github.com/loykin/mediasmoke/internal/session"
)

// Step names as they appear in reports.
const (
	StepLogin    = session.OpLogin
	StepUpload   = session.OpUpload
	StepVerify   = session.OpVerify
	StepResource = "resource"
)

// Operations is the client surface the runner drives.
type Operations interface {
	Authenticate(ctx context.Context, creds session.Credentials) (session.SessionToken, error)
	UploadMedia(ctx context.Context, token session.SessionToken, req session.UploadRequest) (*session.Result, error)
	VerifySession(ctx context.Context, token session.SessionToken) (*session.Result, error)
}

// StepReport is what the Reporter receives after each step.
type StepReport struct {
	Step    string
	Result  *session.Result
	Err     error
	Token   session.SessionToken
	Check   *ResourceCheck
	Skipped bool
}

// Reporter presents step outcomes to a human.
type Reporter interface {
	Report(StepReport)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(StepReport)

func (f ReporterFunc) Report(r StepReport) { f(r) }

// ResourceCheck compares the stored resource reference returned by the
// upload with the one the profile shows afterwards.
type ResourceCheck struct {
	UploadPath  string
	VerifyPath  string
	UploadValue string
	VerifyValue string
	Match       bool
}

// Options are the per-run inputs.
type Options struct {
	Credentials session.Credentials
	Upload      session.UploadRequest
	Verify      bool
	// UploadResourcePath and VerifyResourcePath are gjson paths. When both are
	// set the runner checks that they resolve to the same value.
	UploadResourcePath string
	VerifyResourcePath string
}

// Outcome collects every step of one run.
type Outcome struct {
	Token         session.SessionToken
	Upload        *session.Result
	UploadErr     error
	Verify        *session.Result
	VerifyErr     error
	VerifySkipped bool
	Resource      *ResourceCheck
}

// Failed reports whether any step after login failed or the resource check mismatched.
func (o *Outcome) Failed() bool {
	if o == nil {
		return true
	}
	if o.UploadErr != nil || o.VerifyErr != nil {
		return true
	}
	return o.Resource != nil && !o.Resource.Match
}

// Err joins the step errors of the run, nil when none failed.
func (o *Outcome) Err() error {
	if o == nil {
		return nil
	}
	return errors.Join(o.UploadErr, o.VerifyErr)
}

// Runner executes one smoke run.
type Runner struct {
	ops      Operations
	reporter Reporter
	opts     Options
	logger   *common.Logger
}

// NewRunner wires a Runner. A nil reporter discards reports.
func NewRunner(ops Operations, reporter Reporter, opts Options) *Runner {
	if reporter == nil {
		reporter = ReporterFunc(func(StepReport) {})
	}
	return &Runner{
		ops:      ops,
		reporter: reporter,
		opts:     opts,
		logger:   common.GetLogger().WithComponent("workflow"),
	}
}

// Run authenticates, uploads and optionally verifies. The returned error is
// non-nil only when login fails; later failures live in the Outcome.
func (r *Runner) Run(ctx context.Context) (*Outcome, error) {
	out := &Outcome{}

	r.logger.Info("logging in", "email", r.opts.Credentials.Email)
	tok, err := r.ops.Authenticate(ctx, r.opts.Credentials)
	r.reporter.Report(StepReport{Step: StepLogin, Token: tok, Err: err, Result: rejectedResult(err)})
	if err != nil {
		r.logger.Error("login failed, aborting run", "error", err)
		return out, err
	}
	out.Token = tok
	attrs := []any{"source", string(tok.Source)}
	if exp, ok := tok.ExpiresAt(); ok {
		attrs = append(attrs, "expires_at", exp)
	}
	r.logger.Info("session token acquired", attrs...)

	r.logger.Info("uploading media", "file", r.opts.Upload.FilePath, "field", r.opts.Upload.FieldName)
	out.Upload, out.UploadErr = r.ops.UploadMedia(ctx, tok, r.opts.Upload)
	r.reporter.Report(StepReport{Step: StepUpload, Result: out.Upload, Err: out.UploadErr})
	if out.UploadErr != nil {
		r.logger.Warn("upload failed", "error", out.UploadErr)
	}

	if !r.opts.Verify {
		out.VerifySkipped = true
		r.reporter.Report(StepReport{Step: StepVerify, Skipped: true})
		return out, nil
	}
	out.Verify, out.VerifyErr = r.ops.VerifySession(ctx, tok)
	r.reporter.Report(StepReport{Step: StepVerify, Result: out.Verify, Err: out.VerifyErr})
	if out.VerifyErr != nil {
		r.logger.Warn("profile check failed", "error", out.VerifyErr)
	}

	if check := r.compareResource(out); check != nil {
		out.Resource = check
		r.reporter.Report(StepReport{Step: StepResource, Check: check})
		if !check.Match {
			r.logger.Warn("profile does not show the uploaded resource",
				"uploaded", check.UploadValue, "profile", check.VerifyValue)
		}
	}
	return out, nil
}

func (r *Runner) compareResource(out *Outcome) *ResourceCheck {
	if r.opts.UploadResourcePath == "" || r.opts.VerifyResourcePath == "" {
		return nil
	}
	if out.UploadErr != nil || out.VerifyErr != nil || out.Upload == nil || out.Verify == nil {
		return nil
	}
	check := &ResourceCheck{
		UploadPath:  r.opts.UploadResourcePath,
		VerifyPath:  r.opts.VerifyResourcePath,
		UploadValue: out.Upload.Get(r.opts.UploadResourcePath).String(),
		VerifyValue: out.Verify.Get(r.opts.VerifyResourcePath).String(),
	}
	check.Match = check.UploadValue != "" && check.UploadValue == check.VerifyValue
	return check
}

// rejectedResult pulls the response out of a rejection so it can be reported.
func rejectedResult(err error) *session.Result {
	var rej *session.RejectedError
	if errors.As(err, &rej) {
		return rej.Result
	}
	return nil
}
