package session

import (
	"net/http"
	"testing"
)

func TestResult_Parse(t *testing.T) {
	tests := []struct {
		name     string
		ct       string
		body     string
		wantJSON bool
	}{
		{"declared json", "application/json; charset=utf-8", `{"stored":true}`, true},
		{"vendor json", "application/problem+json", `{"title":"x"}`, true},
		{"undeclared json", "", `{"stored":true}`, true},
		{"declared json but broken", "application/json", `{"stored":`, false},
		{"text", "text/plain", `{"stored":true}`, false},
		{"html", "text/html", `<p>ok</p>`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Result{StatusCode: 200, Header: http.Header{}, ContentType: tt.ct, Body: []byte(tt.body)}
			r.parse()
			if r.IsJSON() != tt.wantJSON {
				t.Fatalf("IsJSON = %v, want %v", r.IsJSON(), tt.wantJSON)
			}
			if !tt.wantJSON && r.Data != tt.body {
				t.Fatalf("expected raw text data, got %#v", r.Data)
			}
			if tt.wantJSON {
				if _, ok := r.Data.(map[string]interface{}); !ok {
					t.Fatalf("expected decoded object, got %T", r.Data)
				}
			}
		})
	}
}

func TestResult_GetAndSuccess(t *testing.T) {
	r := &Result{StatusCode: 201, ContentType: "application/json", Body: []byte(`{"data":{"urls":["u1","u2"]}}`)}
	r.parse()
	if !r.Success() {
		t.Fatalf("201 is success")
	}
	if got := r.Get("data.urls.1").String(); got != "u2" {
		t.Fatalf("Get: %q", got)
	}
	if r.Get("").Exists() {
		t.Fatalf("empty path must not match")
	}
	txt := &Result{StatusCode: 500, ContentType: "text/plain", Body: []byte("boom")}
	txt.parse()
	if txt.Success() || txt.Get("x").Exists() || txt.Text() != "boom" {
		t.Fatalf("text result misbehaves")
	}
}

func TestNewResult(t *testing.T) {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	r := NewResult(200, h, []byte(`{"stored":true,"bytes":10}`))
	var out struct {
		Stored bool `json:"stored"`
		Bytes  int  `json:"bytes"`
	}
	if err := r.Decode(&out); err != nil || !out.Stored || out.Bytes != 10 {
		t.Fatalf("Decode: %+v err=%v", out, err)
	}
	if NewResult(204, nil, nil).Header == nil {
		t.Fatalf("nil header must be replaced")
	}
}
