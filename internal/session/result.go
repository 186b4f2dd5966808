package session

import (
	"mime"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/go-viper/mapstructure/v2"
	"github.com/tidwall/gjson"
)

// Result is a response kept for reporting. Data holds the decoded JSON value
// when the body is JSON, otherwise the raw text.
type Result struct {
	StatusCode  int
	Header      http.Header
	ContentType string
	Body        []byte
	Data        any
	json        bool
}

func newResult(resp *resty.Response) *Result {
	return NewResult(resp.StatusCode(), resp.Header(), resp.Body())
}

// NewResult builds a parsed Result from raw response parts.
func NewResult(status int, header http.Header, body []byte) *Result {
	if header == nil {
		header = http.Header{}
	}
	r := &Result{
		StatusCode:  status,
		Header:      header,
		ContentType: header.Get("Content-Type"),
		Body:        body,
	}
	r.parse()
	return r
}

// parse decodes JSON when the content type declares it, or when no type is
// declared and the body is valid JSON. Anything else stays text.
func (r *Result) parse() {
	declared := isJSONContentType(r.ContentType)
	if (declared || strings.TrimSpace(r.ContentType) == "") && gjson.ValidBytes(r.Body) {
		r.json = true
		r.Data = gjson.ParseBytes(r.Body).Value()
		return
	}
	r.Data = string(r.Body)
}

func isJSONContentType(ct string) bool {
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return false
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

// Success reports a 2xx status.
func (r *Result) Success() bool { return r.StatusCode >= 200 && r.StatusCode < 300 }

// IsJSON reports whether Data holds decoded JSON.
func (r *Result) IsJSON() bool { return r.json }

// Text returns the raw body.
func (r *Result) Text() string { return string(r.Body) }

// Get evaluates a gjson path against a JSON body. Non-JSON bodies yield an empty result.
func (r *Result) Get(path string) gjson.Result {
	if !r.json || strings.TrimSpace(path) == "" {
		return gjson.Result{}
	}
	return gjson.GetBytes(r.Body, path)
}

// Decode maps a JSON object body onto out using json tags.
func (r *Result) Decode(out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(r.Data)
}
