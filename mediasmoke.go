// Package mediasmoke exposes the session client and smoke workflow for use
// from other Go programs.
package mediasmoke

import (
	"context"
	"io"

	"github.com/go-resty/resty/v2"
	"github.com/loykin/mediasmoke/internal/common"
	"github.com/loykin/mediasmoke/internal/config"
	"github.com/loykin/mediasmoke/internal/report"
	"github.com/loykin/mediasmoke/internal/session"
	"github.com/loykin/mediasmoke/internal/workflow"
)

// Re-export commonly used types for public API

type Client = session.Client

// ClientConfig is the endpoint and cookie layout of the target service.
type ClientConfig = session.Config

type Credentials = session.Credentials

// SessionToken is the credential issued by login and replayed as a cookie.
type SessionToken = session.SessionToken

type UploadRequest = session.UploadRequest

// Result is a parsed response body.
type Result = session.Result

type Encoding = session.Encoding

const (
	EncodingForm = session.EncodingForm
	EncodingJSON = session.EncodingJSON
)

// Errors returned by the client. Match them with errors.Is.
var (
	ErrLoginRejected  = session.ErrLoginRejected
	ErrTokenMissing   = session.ErrTokenMissing
	ErrFileNotFound   = session.ErrFileNotFound
	ErrUploadRejected = session.ErrUploadRejected
	ErrVerifyRejected = session.ErrVerifyRejected
	ErrTransport      = session.ErrTransport
)

// NewClient builds a session client. hc may be nil for a default resty client.
func NewClient(cfg ClientConfig, hc *resty.Client) (*Client, error) {
	return session.New(cfg, hc)
}

// Workflow types.
type (
	Reporter     = workflow.Reporter
	ReporterFunc = workflow.ReporterFunc
	StepReport   = workflow.StepReport
	Options      = workflow.Options
	Outcome      = workflow.Outcome
)

// Run executes login, upload and the optional profile check with client.
func Run(ctx context.Context, client *Client, reporter Reporter, opts Options) (*Outcome, error) {
	return workflow.NewRunner(client, reporter, opts).Run(ctx)
}

// NewConsoleReporter writes human readable step blocks to w.
func NewConsoleReporter(w io.Writer, color, mask bool) Reporter {
	return report.NewConsole(w, color, mask)
}

// Config is the file/env configuration document used by the CLI.
type Config = config.Config

// LoadConfig reads a YAML config file and applies presets.
func LoadConfig(path string) (*Config, error) {
	c, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := c.ApplyDefaults(); err != nil {
		return nil, err
	}
	return c, nil
}

// RunConfig runs a full smoke pass described by cfg.
func RunConfig(ctx context.Context, cfg *Config, reporter Reporter) (*Outcome, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client, err := session.New(cfg.Session(), cfg.HTTP().New())
	if err != nil {
		return nil, err
	}
	return Run(ctx, client, reporter, cfg.Workflow())
}

// Logging

type Logger = common.Logger
type LogLevel = common.LogLevel

const (
	LogLevelError = common.LogLevelError
	LogLevelWarn  = common.LogLevelWarn
	LogLevelInfo  = common.LogLevelInfo
	LogLevelDebug = common.LogLevelDebug
)

func NewLogger(level LogLevel) *Logger     { return common.NewLogger(level) }
func NewJSONLogger(level LogLevel) *Logger { return common.NewJSONLogger(level) }
func SetDefaultLogger(l *Logger)           { common.SetDefaultLogger(l) }

// MaskSensitiveData hides passwords, session cookies and bare JWTs in s.
func MaskSensitiveData(s string) string { return common.MaskSensitiveData(s) }

// EnableMasking toggles global masking.
func EnableMasking(enabled bool) { common.EnableMasking(enabled) }
