package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	logging "github.com/ipfs/go-log/v2"
	"github.com/urfave/cli/v2"

	"github.com/sainapse/presigned-upload/internal/config"
	"github.com/sainapse/presigned-upload/internal/handler"
	"github.com/sainapse/presigned-upload/internal/telemetry"
)

var log = logging.Logger("cmd/presignd")

func main() {
	if err := logging.SetLogLevel("*", "info"); err != nil {
		log.Warnw("setting default log level", "err", err)
	}

	app := &cli.App{
		Name:  "presignd",
		Usage: "Issue presigned upload URLs over plain HTTP for local development.",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Start the presigned URL HTTP server.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "addr",
						Aliases: []string{"a"},
						Value:   ":8080",
						Usage:   "address to listen on",
						EnvVars: []string{"PRESIGND_ADDR"},
					},
					&cli.StringFlag{
						Name:    "bucket",
						Aliases: []string{"b"},
						Usage:   "bucket to sign uploads for (overrides BUCKET_NAME)",
					},
					&cli.StringFlag{
						Name:  "provider",
						Usage: `storage provider, "s3" or "gcs" (overrides PRESIGN_PROVIDER)`,
					},
					&cli.DurationFlag{
						Name:  "expires",
						Usage: "validity of issued URLs (overrides PRESIGN_EXPIRES)",
					},
					&cli.StringFlag{
						Name:  "endpoint",
						Usage: "S3-compatible endpoint, implies path-style addressing (overrides S3_ENDPOINT)",
					},
				},
				Action: serve,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func serve(cCtx *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cCtx.IsSet("bucket") {
		cfg.Bucket = cCtx.String("bucket")
	}
	if cCtx.IsSet("provider") {
		cfg.Provider = cCtx.String("provider")
	}
	if cCtx.IsSet("expires") {
		cfg.Expires = cCtx.Duration("expires")
	}
	if cCtx.IsSet("endpoint") {
		cfg.Endpoint = cCtx.String("endpoint")
		cfg.UsePathStyle = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := logging.SetLogLevel("*", cfg.LogLevel); err != nil {
		log.Warnw("invalid log level, keeping default", "level", cfg.LogLevel, "err", err)
	}
	if err := telemetry.SetupErrorReporting(cfg.SentryDSN, cfg.SentryEnvironment); err != nil {
		return err
	}
	defer telemetry.Flush(2 * time.Second)

	ctx, stop := signal.NotifyContext(cCtx.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := telemetry.NewMetrics()
	h, err := handler.NewFromConfig(ctx, cfg, metrics)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         cCtx.String("addr"),
		Handler:      newRouter(h, metrics),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("listening", "addr", srv.Addr, "provider", cfg.Provider, "bucket", cfg.Bucket)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newRouter(h http.Handler, metrics *telemetry.Metrics) *mux.Router {
	r := mux.NewRouter()
	r.MethodNotAllowedHandler = http.HandlerFunc(handler.MethodNotAllowed)
	r.Handle("/presigned-url", h).Methods(http.MethodPost, http.MethodOptions)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	return r
}
