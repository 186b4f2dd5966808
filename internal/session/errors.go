package session

import (
	"errors"
	"fmt"
)

// Operation names used in errors and reports.
const (
	OpLogin  = "login"
	OpUpload = "upload"
	OpVerify = "verify"
)

var (
	// ErrLoginRejected means the login endpoint answered with a non-2xx status.
	ErrLoginRejected = errors.New("login rejected")
	// ErrTokenMissing means login succeeded but no session cookie could be found,
	// neither in the cookie jar nor in the raw Set-Cookie headers.
	ErrTokenMissing = errors.New("session token missing")
	// ErrFileNotFound means the upload file could not be opened for reading.
	ErrFileNotFound = errors.New("upload file not found")
	// ErrUploadRejected means the upload endpoint answered with a non-2xx status.
	ErrUploadRejected = errors.New("upload rejected")
	// ErrVerifyRejected means the profile endpoint answered with a non-2xx status.
	ErrVerifyRejected = errors.New("verify rejected")
	// ErrTransport means the request never produced an HTTP response.
	ErrTransport = errors.New("transport failure")
)

const maxErrorBody = 256

// RejectedError carries the status and body of a non-2xx response.
type RejectedError struct {
	Op         string
	StatusCode int
	Body       []byte
	Result     *Result
	kind       error
}

func (e *RejectedError) Error() string {
	body := string(e.Body)
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody] + "..."
	}
	return fmt.Sprintf("%s: server returned %d: %s", e.Op, e.StatusCode, body)
}

func (e *RejectedError) Unwrap() error { return e.kind }

// FileError reports an upload file that does not exist or cannot be read.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: open %s: %v", OpUpload, e.Path, e.Err)
}

func (e *FileError) Unwrap() []error { return []error{ErrFileNotFound, e.Err} }

// TransportError wraps a failure below HTTP: dial, TLS, timeout, cancelled context.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() []error { return []error{ErrTransport, e.Err} }

func rejected(op string, res *Result, kind error) *RejectedError {
	return &RejectedError{Op: op, StatusCode: res.StatusCode, Body: res.Body, Result: res, kind: kind}
}
