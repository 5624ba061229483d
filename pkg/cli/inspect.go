package cli

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/mchmarny/topicpredict/pkg/artifact"
)

var inspectCmd = &cli.Command{
	Name:    "inspect",
	Aliases: []string{"i"},
	Usage:   "Print the features, means and topics of the loaded artifacts",
	Action:  cmdInspect,
}

type inspectResult struct {
	Artifacts []artifact.Location `json:"artifacts" yaml:"artifacts"`
	Features  []string            `json:"features" yaml:"features"`
	Important []string            `json:"important_features" yaml:"important_features"`
	// Means holds nil for features whose training mean is undefined.
	Means    map[string]*float64 `json:"feature_means" yaml:"feature_means"`
	Classes  []string            `json:"classes" yaml:"classes"`
	LoadedAt time.Time           `json:"loaded_at" yaml:"loaded_at"`
}

func cmdInspect(ctx context.Context, cmd *cli.Command) error {
	cfg := getConfig(cmd)

	b, err := cfg.Artifacts.Get(ctx)
	if err != nil {
		return err
	}

	if err := encode(cmd.Root().Writer, cfg.OutputFormat, describe(b)); err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	return nil
}

func describe(b *artifact.Bundle) *inspectResult {
	means := make(map[string]*float64, b.Means.Len())
	for k, v := range b.Means.Values() {
		if math.IsNaN(v) {
			means[k] = nil
			continue
		}
		means[k] = &v
	}
	return &inspectResult{
		Artifacts: b.Locations,
		Features:  b.Catalog.Names(),
		Important: b.Important.Names(),
		Means:     means,
		Classes:   b.Decoder.Classes(),
		LoadedAt:  b.LoadedAt,
	}
}
