package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/loykin/mediasmoke/internal/common"
	"github.com/loykin/mediasmoke/internal/mockapi"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var mockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Serve a local mock of the login, upload and profile endpoints",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serveMock(ctx, viper.GetViper())
	},
}

func bindMockFlags(v *viper.Viper) {
	f := mockCmd.Flags()
	f.String("addr", "127.0.0.1:8888", "listen address")
	f.String("email", "tester@example.com", "accepted login email")
	f.String("password", "secret", "accepted login password")
	f.String("cookie-domain", "", "Domain attribute of the session cookie")
	f.String("cookie-path", "/", "Path attribute of the session cookie")
	f.Duration("token-ttl", mockapi.DefaultTokenTTL, "lifetime of issued tokens")
	_ = v.BindPFlag("mock.addr", f.Lookup("addr"))
	_ = v.BindPFlag("mock.email", f.Lookup("email"))
	_ = v.BindPFlag("mock.password", f.Lookup("password"))
	_ = v.BindPFlag("mock.cookie_domain", f.Lookup("cookie-domain"))
	_ = v.BindPFlag("mock.cookie_path", f.Lookup("cookie-path"))
	_ = v.BindPFlag("mock.token_ttl", f.Lookup("token-ttl"))
}

func serveMock(ctx context.Context, v *viper.Viper) error {
	logger := common.GetLogger().WithComponent("mock")
	srv := mockapi.New(mockapi.Options{
		Users:        map[string]string{v.GetString("mock.email"): v.GetString("mock.password")},
		CookieDomain: v.GetString("mock.cookie_domain"),
		CookiePath:   v.GetString("mock.cookie_path"),
		TokenTTL:     v.GetDuration("mock.token_ttl"),
	})
	hs := &http.Server{
		Addr:              v.GetString("mock.addr"),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("mock service listening", "addr", hs.Addr)
		errCh <- hs.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("mock service shutting down", "uploads", srv.Uploads())
		return hs.Shutdown(shutdownCtx)
	}
}
