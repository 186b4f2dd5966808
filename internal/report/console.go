package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/loykin/mediasmoke/internal/common"
	"github.com/loykin/mediasmoke/internal/session"
	"github.com/loykin/mediasmoke/internal/workflow"
	"github.com/tidwall/pretty"
)

const rule = "========================================"

// Console writes one block per step: title, status, then the body pretty
// printed when it is JSON and verbatim otherwise.
type Console struct {
	w     io.Writer
	color bool
	mask  bool
}

// NewConsole returns a Console writing to w.
func NewConsole(w io.Writer, color, mask bool) *Console {
	return &Console{w: w, color: color, mask: mask}
}

// Report implements workflow.Reporter.
func (c *Console) Report(r workflow.StepReport) {
	var b strings.Builder
	b.WriteString(rule + "\n")
	b.WriteString(strings.ToUpper(r.Step) + "\n")
	b.WriteString(strings.Repeat("-", len(rule)) + "\n")

	switch {
	case r.Skipped:
		b.WriteString("skipped\n")
	case r.Check != nil:
		fmt.Fprintf(&b, "uploaded (%s): %s\n", r.Check.UploadPath, r.Check.UploadValue)
		fmt.Fprintf(&b, "profile  (%s): %s\n", r.Check.VerifyPath, r.Check.VerifyValue)
		fmt.Fprintf(&b, "match: %t\n", r.Check.Match)
	default:
		if r.Result != nil {
			fmt.Fprintf(&b, "Status: %d\n", r.Result.StatusCode)
			b.WriteString(c.body(r.Result))
		}
		if !r.Token.Empty() {
			fmt.Fprintf(&b, "token acquired via %s\n", r.Token.Source)
			if exp, ok := r.Token.ExpiresAt(); ok {
				fmt.Fprintf(&b, "token expires %s\n", exp.UTC().Format("2006-01-02 15:04:05Z"))
			}
		}
		if r.Err != nil {
			fmt.Fprintf(&b, "[ERROR] %s\n", c.maskText(r.Err.Error()))
		}
	}
	b.WriteString(rule + "\n")
	_, _ = io.WriteString(c.w, b.String())
}

func (c *Console) body(res *session.Result) string {
	if len(res.Body) == 0 {
		return ""
	}
	if !res.IsJSON() {
		return c.maskText(res.Text()) + "\n"
	}
	out := pretty.Pretty(res.Body)
	if c.mask {
		out = []byte(common.MaskSensitiveData(string(out)))
	}
	if c.color {
		out = pretty.Color(out, nil)
	}
	return string(out)
}

func (c *Console) maskText(s string) string {
	if !c.mask {
		return s
	}
	return common.MaskSensitiveData(s)
}
