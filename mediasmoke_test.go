package mediasmoke

import (
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/loykin/mediasmoke/internal/mockapi"
)

func TestEmbedded_RunAgainstMock(t *testing.T) {
	m := mockapi.New(mockapi.Options{Users: map[string]string{"a@b.com": "x"}})
	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	file := filepath.Join(t.TempDir(), "me.jpg")
	if err := os.WriteFile(file, []byte("0123456789"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	client, err := NewClient(ClientConfig{BaseURL: srv.URL}, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	var steps []string
	rep := ReporterFunc(func(r StepReport) { steps = append(steps, r.Step) })
	out, err := Run(context.Background(), client, rep, Options{
		Credentials: Credentials{Email: "a@b.com", Password: "x"},
		Upload:      UploadRequest{FilePath: file, FieldName: "avatar", MimeType: "image/jpeg"},
		Verify:      true,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Failed() {
		t.Fatalf("unexpected failure: %v", out.Err())
	}
	if strings.Join(steps, ",") != "login,upload,verify" {
		t.Fatalf("unexpected steps %v", steps)
	}
}

func TestLoadConfig_AndRunConfig(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(p, []byte("base_url: http://127.0.0.1:1\ncredentials: {email: a@b.com, password: x}\nupload: {file: missing.jpg}\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := LoadConfig(p)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Upload.Field != "avatar" {
		t.Fatalf("preset not applied: %+v", cfg.Upload)
	}
	// nothing listens on port 1
	_, err = RunConfig(context.Background(), cfg, nil)
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
}

func TestMaskSensitiveData_HidesSessionCookie(t *testing.T) {
	EnableMasking(true)
	got := MaskSensitiveData("Set-Cookie: JWT=eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiJ4In0.sig; Path=/")
	if strings.Contains(got, "eyJhbGciOiJIUzI1NiJ9") {
		t.Fatalf("token leaked: %s", got)
	}
}
