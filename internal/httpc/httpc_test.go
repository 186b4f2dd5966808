package httpc

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPClient_Insecure_AllowsSelfSigned(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	// default client should fail due to unknown authority
	if _, err := (&Httpc{}).New().R().Get(srv.URL); err == nil {
		t.Fatalf("expected error without insecure TLS, got nil")
	}

	h := &Httpc{TlsConfig: TLSConfig(true, "1.2", "")}
	resp, err := h.New().R().Get(srv.URL)
	if err != nil || resp.StatusCode() != 200 {
		t.Fatalf("expected 200 with insecure, got err=%v", err)
	}
}

func TestHTTPClient_TLSConfigAppliedToClient(t *testing.T) {
	c12 := (&Httpc{TlsConfig: TLSConfig(false, "1.2", "1.2")}).New()
	tr, _ := c12.GetClient().Transport.(*http.Transport)
	if tr == nil || tr.TLSClientConfig == nil {
		t.Fatalf("expected TLSClientConfig for tls1.2 mode")
	}
	if tr.TLSClientConfig.MinVersion != tls.VersionTLS12 || tr.TLSClientConfig.MaxVersion != tls.VersionTLS12 {
		t.Fatalf("expected TLS1.2 only, got Min=%v Max=%v", tr.TLSClientConfig.MinVersion, tr.TLSClientConfig.MaxVersion)
	}

	// insecure without bounds keeps the crypto/tls default floor
	ci := (&Httpc{TlsConfig: TLSConfig(true, "", "")}).New()
	tr, _ = ci.GetClient().Transport.(*http.Transport)
	if tr == nil || tr.TLSClientConfig == nil || !tr.TLSClientConfig.InsecureSkipVerify {
		t.Fatalf("expected InsecureSkipVerify=true")
	}
	if tr.TLSClientConfig.MinVersion != 0 {
		t.Fatalf("expected MinVersion left to crypto/tls, got %v", tr.TLSClientConfig.MinVersion)
	}

	// a verifying config without a floor defaults MinVersion to TLS1.3
	cv := (&Httpc{TlsConfig: &tls.Config{MaxVersion: tls.VersionTLS13}}).New()
	tr, _ = cv.GetClient().Transport.(*http.Transport)
	if tr == nil || tr.TLSClientConfig == nil || tr.TLSClientConfig.MinVersion != tls.VersionTLS13 {
		t.Fatalf("expected default MinVersion TLS1.3 for verifying config")
	}
}

func TestHTTPClient_InsecureReachesTLS12Host(t *testing.T) {
	srv := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
	}))
	srv.TLS = &tls.Config{MaxVersion: tls.VersionTLS12}
	srv.StartTLS()
	defer srv.Close()

	resp, err := (&Httpc{TlsConfig: TLSConfig(true, "", "")}).New().R().Get(srv.URL)
	if err != nil || resp.StatusCode() != 200 {
		t.Fatalf("expected 200 from TLS1.2 host with insecure, got err=%v", err)
	}
}

func TestTLSConfig_NilWhenUnconfigured(t *testing.T) {
	if cfg := TLSConfig(false, "", "bogus"); cfg != nil {
		t.Fatalf("expected nil tls config, got %+v", cfg)
	}
}

func TestHTTPClient_TimeoutAndJar(t *testing.T) {
	c := (&Httpc{Timeout: 3 * time.Second}).New()
	if c.GetClient().Timeout != 3*time.Second {
		t.Fatalf("timeout not applied: %v", c.GetClient().Timeout)
	}
	if c.GetClient().Jar == nil {
		t.Fatalf("default client should carry a cookie jar")
	}
	nj := (&Httpc{NoCookieJar: true}).New()
	if nj.GetClient().Jar != nil {
		t.Fatalf("NoCookieJar should drop the jar")
	}
	if (&Httpc{}).New().GetClient().Timeout != 0 {
		t.Fatalf("zero timeout must leave requests unbounded")
	}
}

func TestParseTLSVersion(t *testing.T) {
	cases := map[string]uint16{
		"1.2": tls.VersionTLS12, "tls13": tls.VersionTLS13, " TLS1.1 ": tls.VersionTLS11, "x": 0,
	}
	for in, want := range cases {
		if got := ParseTLSVersion(in); got != want {
			t.Fatalf("ParseTLSVersion(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestHTTPClient_PlainHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(204)
	}))
	defer srv.Close()
	resp, err := (&Httpc{}).New().R().Get(srv.URL)
	if err != nil || resp.StatusCode() != 204 {
		t.Fatalf("expected 204, got err=%v", err)
	}
}
