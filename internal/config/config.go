// Package config holds the run configuration: where the service lives, which
// account to use, what to upload and how to report it.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/loykin/mediasmoke/internal/common"
	"github.com/loykin/mediasmoke/internal/constants"
	"github.com/loykin/mediasmoke/internal/httpc"
	"github.com/loykin/mediasmoke/internal/session"
	"github.com/loykin/mediasmoke/internal/util"
	"github.com/loykin/mediasmoke/internal/workflow"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type CredentialsConfig struct {
	Email    string `mapstructure:"email" yaml:"email"`
	Password string `mapstructure:"password" yaml:"password"`
	// PasswordFromEnv names an environment variable read when Password is empty.
	PasswordFromEnv string `mapstructure:"password_from_env" yaml:"password_from_env,omitempty"`
}

type LoginConfig struct {
	Path     string `mapstructure:"path" yaml:"path"`
	Encoding string `mapstructure:"encoding" yaml:"encoding"` // form, json
}

type UploadConfig struct {
	Path         string `mapstructure:"path" yaml:"path"`
	File         string `mapstructure:"file" yaml:"file"`
	Field        string `mapstructure:"field" yaml:"field"`
	MimeType     string `mapstructure:"mime_type" yaml:"mime_type"`
	ResourcePath string `mapstructure:"resource_path" yaml:"resource_path,omitempty"`
}

type VerifyConfig struct {
	Enabled      *bool  `mapstructure:"enabled" yaml:"enabled,omitempty"`
	Path         string `mapstructure:"path" yaml:"path"`
	ResourcePath string `mapstructure:"resource_path" yaml:"resource_path,omitempty"`
}

type ClientConfig struct {
	Insecure      bool   `mapstructure:"insecure" yaml:"insecure"`
	MinTLSVersion string `mapstructure:"min_tls_version" yaml:"min_tls_version,omitempty"`
	MaxTLSVersion string `mapstructure:"max_tls_version" yaml:"max_tls_version,omitempty"`
}

type LoggingConfig struct {
	Level         string `mapstructure:"level" yaml:"level"`                   // error, warn, info, debug
	Format        string `mapstructure:"format" yaml:"format"`                 // text, json, color
	MaskSensitive *bool  `mapstructure:"mask_sensitive" yaml:"mask_sensitive"` // enable/disable sensitive data masking
	Color         *bool  `mapstructure:"color" yaml:"color"`                   // colourize console report bodies
}

type Config struct {
	BaseURL     string            `mapstructure:"base_url" yaml:"base_url"`
	Credentials CredentialsConfig `mapstructure:"credentials" yaml:"credentials"`
	Login       LoginConfig       `mapstructure:"login" yaml:"login"`
	CookieName  string            `mapstructure:"cookie_name" yaml:"cookie_name"`
	// Target selects a preset for upload and verify defaults: avatar or post-media.
	Target  string        `mapstructure:"target" yaml:"target"`
	Upload  UploadConfig  `mapstructure:"upload" yaml:"upload"`
	Verify  VerifyConfig  `mapstructure:"verify" yaml:"verify"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Client  ClientConfig  `mapstructure:"client" yaml:"client"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

type preset struct {
	uploadPath     string
	field          string
	mimeType       string
	encoding       string
	verify         bool
	uploadResource string
	verifyResource string
}

// presets mirror the two service endpoints. The login encodings differ on
// purpose: the avatar flow posts a form, the post media flow posts JSON.
var presets = map[string]preset{
	constants.TargetAvatar: {
		uploadPath:     constants.AvatarUploadPath,
		field:          constants.AvatarFieldName,
		mimeType:       constants.AvatarMimeType,
		encoding:       constants.EncodingForm,
		verify:         true,
		uploadResource: "url",
		verifyResource: "avatar_url",
	},
	constants.TargetPostMedia: {
		uploadPath:     constants.PostMediaUploadPath,
		field:          constants.PostMediaFieldName,
		mimeType:       constants.PostMediaMimeType,
		encoding:       constants.EncodingJSON,
		uploadResource: "urls.0",
	},
}

// Load reads a YAML config file.
func Load(path string) (*Config, error) {
	clean := filepath.Clean(path)
	if info, statErr := os.Stat(clean); statErr != nil || !info.Mode().IsRegular() {
		if statErr != nil {
			return nil, statErr
		}
		return nil, fmt.Errorf("not a regular file: %s", clean)
	}
	// #nosec G304 -- config path is provided intentionally by the operator
	f, err := os.Open(clean)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	var c Config
	if err := yaml.NewDecoder(f).Decode(&c); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", clean, err)
	}
	return &c, nil
}

// FromViper decodes the merged file/env/flag view held by v. Every config
// key is bound to its MEDIASMOKE_ variable first; viper's AutomaticEnv alone
// only resolves keys it already knows from flags or the config file.
func FromViper(v *viper.Viper) (*Config, error) {
	if err := bindEnv(v); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	var c Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&c, hook); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &c, nil
}

// Keys lists the dotted config keys declared by the mapstructure tags.
func Keys() []string {
	return collectKeys(reflect.TypeOf(Config{}), "")
}

func collectKeys(t reflect.Type, prefix string) []string {
	var keys []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if tag == "" || tag == "-" {
			continue
		}
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}
		if f.Type.Kind() == reflect.Struct {
			keys = append(keys, collectKeys(f.Type, key)...)
			continue
		}
		keys = append(keys, key)
	}
	return keys
}

// EnvName is the environment variable read for key, e.g. upload.path ->
// MEDIASMOKE_UPLOAD_PATH.
func EnvName(key string) string {
	return constants.EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func bindEnv(v *viper.Viper) error {
	for _, key := range Keys() {
		if err := v.BindEnv(key, EnvName(key)); err != nil {
			return err
		}
	}
	return nil
}

// ApplyDefaults fills unset values from the target preset and global defaults.
// Explicit values always win.
func (c *Config) ApplyDefaults() error {
	c.Target = util.TrimWithDefault(util.TrimAndLower(c.Target), constants.TargetAvatar)
	p, ok := presets[c.Target]
	if !ok {
		return fmt.Errorf("invalid target: %s (valid: %s, %s)", c.Target, constants.TargetAvatar, constants.TargetPostMedia)
	}
	c.CookieName = util.TrimWithDefault(c.CookieName, constants.DefaultCookieName)
	c.Login.Path = util.TrimWithDefault(c.Login.Path, constants.DefaultLoginPath)
	c.Login.Encoding = util.TrimWithDefault(util.TrimAndLower(c.Login.Encoding), p.encoding)
	c.Upload.Path = util.TrimWithDefault(c.Upload.Path, p.uploadPath)
	c.Upload.Field = util.TrimWithDefault(c.Upload.Field, p.field)
	c.Upload.MimeType = util.TrimWithDefault(c.Upload.MimeType, p.mimeType)
	c.Upload.ResourcePath = util.TrimWithDefault(c.Upload.ResourcePath, p.uploadResource)
	c.Verify.Path = util.TrimWithDefault(c.Verify.Path, constants.DefaultVerifyPath)
	c.Verify.ResourcePath = util.TrimWithDefault(c.Verify.ResourcePath, p.verifyResource)
	if c.Verify.Enabled == nil {
		enabled := p.verify
		c.Verify.Enabled = &enabled
	}
	if c.Credentials.Password == "" {
		if name, ok := util.TrimEmptyCheck(c.Credentials.PasswordFromEnv); ok {
			c.Credentials.Password = os.Getenv(name)
			if c.Credentials.Password == "" {
				slog.Warn("password variable requested but empty or not set", "env_var", name)
			}
		}
	}
	return nil
}

// Validate checks the values a run cannot do without.
func (c *Config) Validate() error {
	var errs []error
	if _, ok := util.TrimEmptyCheck(c.BaseURL); !ok {
		errs = append(errs, errors.New("base_url is required"))
	}
	if _, ok := util.TrimEmptyCheck(c.Credentials.Email); !ok {
		errs = append(errs, errors.New("credentials.email is required"))
	}
	if c.Credentials.Password == "" {
		errs = append(errs, errors.New("credentials.password (or password_from_env) is required"))
	}
	if _, ok := util.TrimEmptyCheck(c.Upload.File); !ok {
		errs = append(errs, errors.New("upload.file is required"))
	}
	if _, err := session.ParseEncoding(c.Login.Encoding); err != nil {
		errs = append(errs, err)
	}
	if c.Timeout < 0 {
		errs = append(errs, errors.New("timeout must not be negative"))
	}
	return errors.Join(errs...)
}

// VerifyEnabled reports whether the profile check runs.
func (c *Config) VerifyEnabled() bool {
	return c.Verify.Enabled != nil && *c.Verify.Enabled
}

// Session returns the client configuration.
func (c *Config) Session() session.Config {
	enc, _ := session.ParseEncoding(c.Login.Encoding)
	return session.Config{
		BaseURL:       c.BaseURL,
		CookieName:    c.CookieName,
		LoginPath:     c.Login.Path,
		LoginEncoding: enc,
		UploadPath:    c.Upload.Path,
		VerifyPath:    c.Verify.Path,
	}
}

// HTTP returns the resty client settings.
func (c *Config) HTTP() *httpc.Httpc {
	return &httpc.Httpc{
		TlsConfig: httpc.TLSConfig(c.Client.Insecure, c.Client.MinTLSVersion, c.Client.MaxTLSVersion),
		Timeout:   c.Timeout,
	}
}

// Workflow returns the per-run options.
func (c *Config) Workflow() workflow.Options {
	opts := workflow.Options{
		Credentials: session.Credentials{Email: c.Credentials.Email, Password: c.Credentials.Password},
		Upload: session.UploadRequest{
			FilePath:  c.Upload.File,
			FieldName: c.Upload.Field,
			MimeType:  c.Upload.MimeType,
		},
		Verify: c.VerifyEnabled(),
	}
	if opts.Verify {
		opts.UploadResourcePath = c.Upload.ResourcePath
		opts.VerifyResourcePath = c.Verify.ResourcePath
	}
	return opts
}

// MaskingEnabled defaults to true.
func (c *Config) MaskingEnabled() bool {
	return c.Logging.MaskSensitive == nil || *c.Logging.MaskSensitive
}

// ColorEnabled reports whether report bodies are colourized.
func (c *Config) ColorEnabled() bool {
	if c.Logging.Color != nil {
		return *c.Logging.Color
	}
	f := util.TrimAndLower(c.Logging.Format)
	return f == "color" || f == "colour"
}

// YAML renders the configuration with the password hidden.
func (c *Config) YAML() ([]byte, error) {
	out := *c
	if out.Credentials.Password != "" {
		out.Credentials.Password = common.MaskedValue
	}
	return yaml.Marshal(&out)
}

func (c *Config) parseLogLevel() (common.LogLevel, error) {
	switch util.TrimAndLower(c.Logging.Level) {
	case "error":
		return common.LogLevelError, nil
	case "warn", "warning":
		return common.LogLevelWarn, nil
	case "info", "":
		return common.LogLevelInfo, nil
	case "debug":
		return common.LogLevelDebug, nil
	default:
		return common.LogLevelInfo, fmt.Errorf("invalid logging level: %s (valid: error, warn, info, debug)", c.Logging.Level)
	}
}

// SetupLogging configures the global logger and masking from the logging section.
func (c *Config) SetupLogging() error {
	level, err := c.parseLogLevel()
	if err != nil {
		return err
	}
	var logger *common.Logger
	format := util.TrimAndLower(c.Logging.Format)
	switch format {
	case "json":
		logger = common.NewJSONLogger(level)
	case "color", "colour":
		logger = common.NewColorLogger(level)
	case "text", "":
		logger = common.NewLogger(level)
	default:
		return fmt.Errorf("invalid logging format: %s (valid: text, json, color)", c.Logging.Format)
	}
	common.EnableMasking(c.MaskingEnabled())
	common.SetDefaultLogger(logger)
	logger.Debug("logging configured",
		"level", level.String(),
		"format", util.TrimWithDefault(format, "text"),
		"mask_sensitive", c.MaskingEnabled())
	return nil
}
