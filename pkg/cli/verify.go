package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/mchmarny/topicpredict/pkg/artifact"
)

var verifyCmd = &cli.Command{
	Name:    "verify",
	Aliases: []string{"v"},
	Usage:   "Check that every model artifact is present and print its size and sha256",
	Action:  cmdVerify,
}

func cmdVerify(_ context.Context, cmd *cli.Command) error {
	cfg := getConfig(cmd)

	st, verr := artifact.Verify(cfg.Config.ArtifactConfig())
	if err := encode(cmd.Root().Writer, cfg.OutputFormat, st); err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	return verr
}
