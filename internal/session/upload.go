package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// UploadRequest describes the single file sent by UploadMedia.
type UploadRequest struct {
	FilePath  string
	FieldName string
	MimeType  string
}

// openUpload opens a regular file for reading.
func openUpload(path string) (*os.File, error) {
	clean := filepath.Clean(path)
	info, err := os.Stat(clean)
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("not a regular file: %s", clean)
	}
	// #nosec G304 -- upload path is supplied by the operator on purpose
	return os.Open(clean)
}

// UploadMedia posts the file as the only part of a multipart body under
// FieldName with the declared MimeType. The file is checked before any
// request is made and is closed on every return path.
func (c *Client) UploadMedia(ctx context.Context, token SessionToken, ur UploadRequest) (*Result, error) {
	if token.Empty() {
		return nil, fmt.Errorf("%s: %w", OpUpload, ErrTokenMissing)
	}
	if strings.TrimSpace(ur.FieldName) == "" || strings.TrimSpace(ur.MimeType) == "" {
		return nil, errors.New("upload: field name and mime type are required")
	}
	f, err := openUpload(ur.FilePath)
	if err != nil {
		return nil, &FileError{Path: ur.FilePath, Err: err}
	}
	defer func() { _ = f.Close() }()

	uploadURL := c.endpoint(c.cfg.UploadPath)
	log := c.logger.WithStep(OpUpload).WithRequest("POST", uploadURL)

	req := c.http.R().
		SetContext(ensureContext(ctx)).
		SetMultipartField(ur.FieldName, filepath.Base(f.Name()), ur.MimeType, f)
	c.authorize(req, uploadURL, token)

	log.Debug("uploading file", "file", ur.FilePath, "field", ur.FieldName, "mime_type", ur.MimeType)
	resp, err := req.Post(uploadURL)
	if err != nil {
		return nil, &TransportError{Op: OpUpload, Err: err}
	}
	res := newResult(resp)
	if !res.Success() {
		log.Warn("upload rejected", "status", res.StatusCode)
		return res, rejected(OpUpload, res, ErrUploadRejected)
	}
	return res, nil
}
