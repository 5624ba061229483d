package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/mchmarny/topicpredict/pkg/artifact"
	"github.com/mchmarny/topicpredict/pkg/config"
	"github.com/mchmarny/topicpredict/pkg/logging"
)

const (
	appName      = "topicpredict"
	appConfigKey = "app-config"

	formatJSON = "json"
	formatYAML = "yaml"
)

var (
	version = "v0.0.1-default"
	commit  = ""
	date    = ""

	configFlag = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to the YAML config file (optional)",
		Sources: cli.EnvVars("TOPICPREDICT_CONFIG"),
	}

	artifactsFlag = &cli.StringFlag{
		Name:    "artifacts",
		Aliases: []string{"a"},
		Usage:   "Directory with the model artifacts (overrides config)",
		Sources: cli.EnvVars("TOPICPREDICT_ARTIFACTS"),
	}

	debugFlag = &cli.BoolFlag{
		Name:  "debug",
		Usage: "Prints verbose logs (optional, default: false)",
	}

	formatFlag = &cli.StringFlag{
		Name:  "format",
		Usage: "Output format [json, yaml]",
		Value: formatJSON,
	}

	logFileFlag = &cli.StringFlag{
		Name:  "log-file",
		Usage: "Also write logs to this file, rotated by size (overrides config)",
	}
)

// Execute creates and runs the CLI application.
func Execute() {
	initLogging()

	app := newApp()
	if err := app.Run(context.Background(), os.Args); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

type appConfig struct {
	Config       *config.Config
	Debug        bool
	OutputFormat string
	Artifacts    *artifact.Cache
}

func getConfig(cmd *cli.Command) *appConfig {
	return cmd.Root().Metadata[appConfigKey].(*appConfig)
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:                  appName,
		Version:               fmt.Sprintf("%s (%s - %s)", version, commit, date),
		EnableShellCompletion: true,
		HideHelpCommand:       true,
		Usage:                 "Recommends a thesis topic from course grades using pre-trained model artifacts",
		Metadata:              map[string]any{},
		Flags: []cli.Flag{
			configFlag,
			artifactsFlag,
			debugFlag,
			formatFlag,
			logFileFlag,
		},
		Commands: []*cli.Command{
			serveCmd,
			predictCmd,
			inspectCmd,
			verifyCmd,
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			cfg, err := config.Load(cmd.String(configFlag.Name))
			if err != nil {
				return ctx, fmt.Errorf("loading config: %w", err)
			}

			if dir := cmd.String(artifactsFlag.Name); dir != "" {
				cfg.Artifacts.Dir = dir
			}
			if f := cmd.String(logFileFlag.Name); f != "" {
				cfg.Log.File = f
			}
			debug := cmd.Bool(debugFlag.Name)
			if debug {
				cfg.Log.Level = "debug"
			}

			logging.SetDefaultCLILogger(cfg.Log.Level)

			var format string
			switch f := cmd.String(formatFlag.Name); f {
			case formatJSON, "":
				format = formatJSON
			case formatYAML, "yml":
				format = formatYAML
			default:
				return ctx, fmt.Errorf("unsupported output format %q, use %s or %s", f, formatJSON, formatYAML)
			}

			cmd.Root().Metadata[appConfigKey] = &appConfig{
				Config:       cfg,
				Debug:        debug,
				OutputFormat: format,
				Artifacts:    artifact.NewCache(cfg.ArtifactConfig()),
			}
			slog.Debug("config loaded", "artifacts", cfg.Artifacts.Dir)
			return ctx, nil
		},
		After: func(_ context.Context, cmd *cli.Command) error {
			if cfg, ok := cmd.Root().Metadata[appConfigKey].(*appConfig); ok && cfg.Artifacts != nil {
				if err := cfg.Artifacts.Close(); err != nil {
					slog.Debug("error releasing artifacts", "error", err)
				}
			}
			return nil
		},
	}
}

// initLogging covers output until the config is loaded in Before.
func initLogging() {
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	slog.SetDefault(slog.New(h))
}

func encode(w io.Writer, format string, v any) error {
	if format == formatYAML {
		return yaml.NewEncoder(w).Encode(v)
	}
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	return e.Encode(v)
}
