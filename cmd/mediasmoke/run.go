package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/loykin/mediasmoke/internal/config"
	"github.com/loykin/mediasmoke/internal/report"
	"github.com/loykin/mediasmoke/internal/session"
	"github.com/loykin/mediasmoke/internal/workflow"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// errStepsFailed is returned under --strict when upload, verify or the
// resource check failed after a successful login.
var errStepsFailed = errors.New("smoke run finished with failed steps")

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Authenticate, upload the configured file and verify the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		v := viper.GetViper()
		if cmd.Flags().Changed("no-verify") {
			noVerify, _ := cmd.Flags().GetBool("no-verify")
			v.Set("verify.enabled", !noVerify)
		}
		_, err := runSmoke(cmd.Context(), v, cmd.OutOrStdout())
		return err
	},
}

// runFlags maps viper keys to run flags.
var runFlags = []struct {
	key, flag, usage string
}{
	{"base_url", "base-url", "service base URL"},
	{"credentials.email", "email", "login email"},
	{"credentials.password", "password", "login password (prefer MEDIASMOKE_CREDENTIALS_PASSWORD)"},
	{"login.encoding", "encoding", "login body encoding: form or json"},
	{"cookie_name", "cookie-name", "session cookie name"},
	{"target", "target", "upload preset: avatar or post-media"},
	{"upload.file", "file", "path of the media file to upload"},
	{"upload.field", "field", "multipart field name"},
	{"upload.mime_type", "mime-type", "content type declared for the file part"},
	{"logging.level", "log-level", "log level: error, warn, info, debug"},
	{"logging.format", "log-format", "log format: text, json, color"},
}

func bindRunFlags(v *viper.Viper) {
	f := runCmd.Flags()
	for _, rf := range runFlags {
		f.String(rf.flag, "", rf.usage)
		_ = v.BindPFlag(rf.key, f.Lookup(rf.flag))
	}
	f.Duration("timeout", 0, "per-request timeout (0 = none, never retried)")
	f.Bool("insecure", false, "skip TLS certificate verification")
	f.Bool("no-verify", false, "skip the profile check after the upload")
	f.Bool("strict", false, "exit non-zero when any step fails, not only login")
	_ = v.BindPFlag("timeout", f.Lookup("timeout"))
	_ = v.BindPFlag("client.insecure", f.Lookup("insecure"))
	_ = v.BindPFlag("strict", f.Lookup("strict"))
}

// loadConfig merges the optional config file with env and flags, then
// applies presets and validates.
func loadConfig(v *viper.Viper) (*config.Config, error) {
	if path := strings.TrimSpace(v.GetString("config")); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	cfg, err := config.FromViper(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runSmoke(ctx context.Context, v *viper.Viper, out io.Writer) (*workflow.Outcome, error) {
	cfg, err := loadConfig(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.SetupLogging(); err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	client, err := session.New(cfg.Session(), cfg.HTTP().New())
	if err != nil {
		return nil, err
	}
	reporter := report.NewConsole(out, cfg.ColorEnabled(), cfg.MaskingEnabled())
	started := time.Now()
	outcome, err := workflow.NewRunner(client, reporter, cfg.Workflow()).Run(ctx)
	if err != nil {
		return outcome, err
	}
	_, _ = fmt.Fprintf(out, "finished in %s, failed steps: %t\n", time.Since(started).Round(time.Millisecond), outcome.Failed())
	if v.GetBool("strict") && outcome.Failed() {
		if stepErr := outcome.Err(); stepErr != nil {
			return outcome, fmt.Errorf("%w: %w", errStepsFailed, stepErr)
		}
		return outcome, errStepsFailed
	}
	return outcome, nil
}

// exitCode is 2 for strict step failures and 1 for anything else.
func exitCode(err error) int {
	if errors.Is(err, errStepsFailed) {
		return 2
	}
	return 1
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the resolved configuration with secrets hidden",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		b, err := cfg.YAML()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(b)
		return err
	},
}

var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "mediasmoke %s\n", version)
	},
}
