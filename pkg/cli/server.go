package cli

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v3"

	"github.com/mchmarny/topicpredict/pkg/config"
	"github.com/mchmarny/topicpredict/pkg/logging"
	"github.com/mchmarny/topicpredict/pkg/metrics"
	"github.com/mchmarny/topicpredict/pkg/predict"
)

const (
	serverMaxHeaderBytes = 20
	formMaxBytes         = 1 << 16
)

var (
	//go:embed assets/* templates/*
	embedFS embed.FS

	addressFlag = &cli.StringFlag{
		Name:  "address",
		Usage: "Address on which the server will listen (overrides config)",
	}

	portFlag = &cli.IntFlag{
		Name:  "port",
		Usage: "Port on which the server will listen (overrides config)",
	}

	noBrowserFlag = &cli.BoolFlag{
		Name:    "no-browser",
		Aliases: []string{"nb"},
		Usage:   "Do not open browser automatically",
	}

	serveCmd = &cli.Command{
		Name:    "serve",
		Aliases: []string{"server"},
		Usage:   "Start the prediction form on a local HTTP server",
		Action:  cmdServe,
		Flags: []cli.Flag{
			addressFlag,
			portFlag,
			noBrowserFlag,
		},
	}
)

func cmdServe(ctx context.Context, cmd *cli.Command) error {
	cfg := getConfig(cmd)
	sc := cfg.Config.Server
	if a := cmd.String(addressFlag.Name); a != "" {
		sc.Address = a
	}
	if p := cmd.Int(portFlag.Name); p > 0 {
		sc.Port = int(p)
	}
	if cmd.Bool(noBrowserFlag.Name) {
		sc.OpenBrowser = false
	}

	lc := cfg.Config.Log
	closer := logging.SetDefaultServerLogger(logging.Options{
		Level:      lc.Level,
		Format:     lc.Format,
		File:       lc.File,
		MaxSizeMB:  lc.MaxSizeMB,
		MaxBackups: lc.MaxBackups,
		MaxAgeDays: lc.MaxAgeDays,
	})
	defer closer.Close()

	// artifacts are loaded before listening so a broken bundle never serves
	p, err := newPredictor(ctx, cfg)
	if err != nil {
		return err
	}
	metrics.RecordArtifactsLoaded(p.Bundle().LoadedAt)

	s := &http.Server{
		Addr:           sc.Addr(),
		Handler:        makeRouter(p, cfg.Config.Form),
		ReadTimeout:    sc.ReadTimeout,
		WriteTimeout:   sc.WriteTimeout,
		IdleTimeout:    sc.IdleTimeout,
		MaxHeaderBytes: 1 << serverMaxHeaderBytes,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	url := fmt.Sprintf("http://%s", sc.Addr())
	slog.Info("server started",
		"address", url,
		"artifacts", cfg.Config.Artifacts.Dir,
		"features", p.Bundle().Important.Len(),
	)

	if sc.OpenBrowser {
		openBrowser(url)
	}

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("starting server: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), sc.ShutdownTimeout)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("error shutting down server", "error", err)
	}
	slog.Info("server stopped")
	return nil
}

func makeRouter(p *predict.Predictor, form config.FormConfig) http.Handler {
	tmpl := template.Must(template.New("").Funcs(templateFuncs).ParseFS(embedFS, "templates/*.html"))
	assets, err := fs.Sub(embedFS, "assets")
	if err != nil {
		panic(err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestMetrics)
	r.Use(middleware.Recoverer)

	// Static files
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(assets)))
	r.Get("/favicon.ico", faviconHandler)

	// Views
	r.Get("/", formViewHandler(tmpl, p, form))
	r.Post("/", formSubmitHandler(tmpl, p, form))

	// API
	r.Route("/api", func(r chi.Router) {
		r.Get("/features", featuresAPIHandler(p, form))
		r.Post("/predict", predictAPIHandler(p))
	})

	r.Get("/healthz", healthHandler(p))
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func openBrowser(url string) {
	var cmd string
	args := make([]string, 0, 1)

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
	case "linux":
		cmd = "xdg-open"
	default: // windows
		cmd = "rundll32"
		args = []string{"url.dll,FileProtocolHandler"}
	}

	args = append(args, url)
	if err := exec.Command(cmd, args...).Start(); err != nil {
		slog.Error("failed to open browser", "error", err)
	}
}
