package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/mchmarny/topicpredict/pkg/feature"
	"github.com/mchmarny/topicpredict/pkg/predict"
)

var (
	setFlag = &cli.StringSliceFlag{
		Name:    "set",
		Aliases: []string{"s"},
		Usage:   `Grade for an important feature as "Name=value" (repeatable, unset features use the form default)`,
	}

	predictCmd = &cli.Command{
		Name:    "predict",
		Aliases: []string{"p"},
		Usage:   "Run a single prediction and print the result",
		Action:  cmdPredict,
		Flags: []cli.Flag{
			setFlag,
		},
	}
)

func cmdPredict(ctx context.Context, cmd *cli.Command) error {
	cfg := getConfig(cmd)

	values, err := feature.ParseAssignments(cmd.StringSlice(setFlag.Name))
	if err != nil {
		return fmt.Errorf("parsing --%s: %w", setFlag.Name, err)
	}

	p, err := newPredictor(ctx, cfg)
	if err != nil {
		return err
	}

	in, err := p.Input(values)
	if err != nil {
		return fmt.Errorf("invalid input: %w", err)
	}

	r, err := p.Predict(ctx, in)
	if err != nil {
		return fmt.Errorf("predicting topic: %w", err)
	}

	if err := encode(cmd.Root().Writer, cfg.OutputFormat, r); err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	return nil
}

// newPredictor loads the artifacts and builds a predictor from the config.
func newPredictor(ctx context.Context, cfg *appConfig) (*predict.Predictor, error) {
	b, err := cfg.Artifacts.Get(ctx)
	if err != nil {
		return nil, err
	}
	p, err := predict.New(b,
		predict.WithDefault(cfg.Config.Form.Default),
		predict.WithCache(cfg.Config.Predict.CacheSize),
	)
	if err != nil {
		return nil, fmt.Errorf("creating predictor: %w", err)
	}
	return p, nil
}
