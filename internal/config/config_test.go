package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/loykin/mediasmoke/internal/session"
	"github.com/spf13/viper"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestLoad_YAML(t *testing.T) {
	p := writeYAML(t, `
base_url: http://localhost:8888
credentials:
  email: a@b.com
  password: x
target: post-media
upload:
  file: ./me.jpg
timeout: 30s
logging:
  level: debug
`)
	c, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.BaseURL != "http://localhost:8888" || c.Credentials.Email != "a@b.com" || c.Timeout != 30*time.Second {
		t.Fatalf("unexpected config %+v", c)
	}
	if err := c.ApplyDefaults(); err != nil {
		t.Fatalf("ApplyDefaults: %v", err)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if c.Upload.Path != "/post/media/upload" || c.Upload.Field != "images" || c.Upload.MimeType != "image/png" {
		t.Fatalf("post-media preset not applied: %+v", c.Upload)
	}
	if c.Login.Encoding != "json" || c.VerifyEnabled() {
		t.Fatalf("post-media preset: encoding=%s verify=%v", c.Login.Encoding, c.VerifyEnabled())
	}
}

func TestLoad_NotRegularFile(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Fatalf("expected error for directory path")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestApplyDefaults_AvatarPresetAndOverrides(t *testing.T) {
	off := false
	c := &Config{
		Upload: UploadConfig{Field: "picture"},
		Verify: VerifyConfig{Enabled: &off},
		Login:  LoginConfig{Encoding: "JSON"},
	}
	if err := c.ApplyDefaults(); err != nil {
		t.Fatalf("ApplyDefaults: %v", err)
	}
	if c.Target != "avatar" || c.Upload.Path != "/user/update-avatar" || c.Upload.MimeType != "image/jpeg" {
		t.Fatalf("avatar preset not applied: %+v", c)
	}
	if c.Upload.Field != "picture" {
		t.Fatalf("explicit field must win, got %q", c.Upload.Field)
	}
	if c.Login.Encoding != "json" {
		t.Fatalf("explicit encoding must win, got %q", c.Login.Encoding)
	}
	if c.VerifyEnabled() {
		t.Fatalf("explicit verify=false must win")
	}
	if c.CookieName != "JWT" || c.Login.Path != "/login" || c.Verify.Path != "/me" {
		t.Fatalf("global defaults missing: %+v", c)
	}
}

func TestApplyDefaults_InvalidTarget(t *testing.T) {
	c := &Config{Target: "banner"}
	if err := c.ApplyDefaults(); err == nil {
		t.Fatalf("expected error for unknown target")
	}
}

func TestApplyDefaults_PasswordFromEnv(t *testing.T) {
	t.Setenv("SMOKE_PASSWORD", "from-env")
	c := &Config{Credentials: CredentialsConfig{Email: "a@b.com", PasswordFromEnv: "SMOKE_PASSWORD"}}
	if err := c.ApplyDefaults(); err != nil {
		t.Fatalf("ApplyDefaults: %v", err)
	}
	if c.Credentials.Password != "from-env" {
		t.Fatalf("expected env password, got %q", c.Credentials.Password)
	}
}

func TestValidate_ReportsAllMissing(t *testing.T) {
	c := &Config{Login: LoginConfig{Encoding: "xml"}, Timeout: -time.Second}
	err := c.Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"base_url", "credentials.email", "credentials.password", "upload.file", "invalid login encoding", "timeout"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("missing %q in %v", want, err)
		}
	}
}

func TestFromViper_DurationsAndNesting(t *testing.T) {
	v := viper.New()
	v.Set("base_url", "http://h")
	v.Set("timeout", "1m30s")
	v.Set("credentials.email", "a@b.com")
	v.Set("verify.enabled", "false")
	c, err := FromViper(v)
	if err != nil {
		t.Fatalf("FromViper: %v", err)
	}
	if c.Timeout != 90*time.Second || c.Credentials.Email != "a@b.com" || c.BaseURL != "http://h" {
		t.Fatalf("unexpected decode %+v", c)
	}
	if c.Verify.Enabled == nil || *c.Verify.Enabled {
		t.Fatalf("verify.enabled not decoded: %v", c.Verify.Enabled)
	}
}

func TestConfig_Projections(t *testing.T) {
	c := &Config{
		BaseURL:     "http://h",
		Credentials: CredentialsConfig{Email: "a@b.com", Password: "x"},
		Upload:      UploadConfig{File: "me.jpg"},
		Timeout:     5 * time.Second,
		Client:      ClientConfig{Insecure: true},
	}
	if err := c.ApplyDefaults(); err != nil {
		t.Fatalf("ApplyDefaults: %v", err)
	}
	sc := c.Session()
	if sc.LoginEncoding != session.EncodingForm || sc.UploadPath != "/user/update-avatar" || sc.CookieName != "JWT" {
		t.Fatalf("session config: %+v", sc)
	}
	wo := c.Workflow()
	if !wo.Verify || wo.UploadResourcePath != "url" || wo.VerifyResourcePath != "avatar_url" {
		t.Fatalf("workflow options: %+v", wo)
	}
	if wo.Upload.FieldName != "avatar" || wo.Credentials.Password != "x" {
		t.Fatalf("workflow upload: %+v", wo.Upload)
	}
	h := c.HTTP()
	if h.Timeout != 5*time.Second || h.TlsConfig == nil || !h.TlsConfig.InsecureSkipVerify {
		t.Fatalf("http settings: %+v", h)
	}
}

func TestConfig_YAMLHidesPassword(t *testing.T) {
	c := &Config{BaseURL: "http://h", Credentials: CredentialsConfig{Email: "a@b.com", Password: "hunter2"}, Timeout: time.Second}
	out, err := c.YAML()
	if err != nil {
		t.Fatalf("YAML: %v", err)
	}
	s := string(out)
	if strings.Contains(s, "hunter2") || !strings.Contains(s, "timeout: 1s") {
		t.Fatalf("unexpected yaml:\n%s", s)
	}
	if c.Credentials.Password != "hunter2" {
		t.Fatalf("YAML must not modify the receiver")
	}
}

func TestSetupLogging(t *testing.T) {
	c := &Config{Logging: LoggingConfig{Level: "verbose"}}
	if err := c.SetupLogging(); err == nil {
		t.Fatalf("expected invalid level error")
	}
	c = &Config{Logging: LoggingConfig{Format: "xml"}}
	if err := c.SetupLogging(); err == nil {
		t.Fatalf("expected invalid format error")
	}
	c = &Config{Logging: LoggingConfig{Level: "debug", Format: "json"}}
	if err := c.SetupLogging(); err != nil {
		t.Fatalf("SetupLogging: %v", err)
	}
	if !c.MaskingEnabled() || c.ColorEnabled() {
		t.Fatalf("defaults: masking on, colour off")
	}
	yes := true
	c.Logging.Color = &yes
	if !c.ColorEnabled() {
		t.Fatalf("explicit colour flag ignored")
	}
}

func TestFromViper_EnvOnlyKeys(t *testing.T) {
	t.Setenv("MEDIASMOKE_UPLOAD_PATH", "/post/media/upload")
	t.Setenv("MEDIASMOKE_LOGIN_PATH", "/auth/login")
	t.Setenv("MEDIASMOKE_COOKIE_NAME", "session")
	t.Setenv("MEDIASMOKE_VERIFY_ENABLED", "false")
	t.Setenv("MEDIASMOKE_CLIENT_INSECURE", "true")
	t.Setenv("MEDIASMOKE_LOGGING_MASK_SENSITIVE", "false")
	t.Setenv("MEDIASMOKE_TIMEOUT", "2s")

	c, err := FromViper(viper.New())
	if err != nil {
		t.Fatalf("FromViper: %v", err)
	}
	if c.Upload.Path != "/post/media/upload" || c.Login.Path != "/auth/login" || c.CookieName != "session" {
		t.Fatalf("env values dropped: upload=%q login=%q cookie=%q", c.Upload.Path, c.Login.Path, c.CookieName)
	}
	if c.Verify.Enabled == nil || *c.Verify.Enabled {
		t.Fatalf("MEDIASMOKE_VERIFY_ENABLED not applied: %v", c.Verify.Enabled)
	}
	if !c.Client.Insecure || c.MaskingEnabled() || c.Timeout != 2*time.Second {
		t.Fatalf("env values dropped: %+v", c)
	}
}

func TestFromViper_ConfigValueWhenEnvUnset(t *testing.T) {
	v := viper.New()
	v.Set("upload.path", "/custom")
	c, err := FromViper(v)
	if err != nil {
		t.Fatalf("FromViper: %v", err)
	}
	if c.Upload.Path != "/custom" || c.Login.Path != "" {
		t.Fatalf("unexpected decode: upload=%q login=%q", c.Upload.Path, c.Login.Path)
	}
}

func TestKeys_CoverNestedSections(t *testing.T) {
	keys := strings.Join(Keys(), " ")
	for _, want := range []string{"base_url", "credentials.password_from_env", "upload.mime_type", "verify.enabled", "client.max_tls_version", "logging.mask_sensitive", "timeout"} {
		if !strings.Contains(keys, want) {
			t.Fatalf("missing key %q in %s", want, keys)
		}
	}
	if EnvName("upload.mime_type") != "MEDIASMOKE_UPLOAD_MIME_TYPE" {
		t.Fatalf("unexpected env name %s", EnvName("upload.mime_type"))
	}
}
