// Package cli provides the command-line interface for mobitest-runner.
package cli

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/mobitest-runner/pkg/logger"
)

// Version is set at build time.
var Version = "dev"

// GlobalFlags are available to all commands.
var GlobalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "workspace",
		Aliases: []string{"w"},
		Usage:   "Workspace directory holding config.yaml",
		Value:   ".",
		EnvVars: []string{"MOBITEST_WORKSPACE"},
	},
	&cli.BoolFlag{
		Name:    "verbose",
		Usage:   "Echo log output to stderr",
		EnvVars: []string{"MOBITEST_VERBOSE"},
	},
}

// NewApp builds the CLI application.
func NewApp() *cli.App {
	return &cli.App{
		Name:    "mobitest-runner",
		Usage:   "Mobile UI test automation with analytics event verification",
		Version: Version,
		Flags:   GlobalFlags,
		Before: func(c *cli.Context) error {
			logger.SetVerbose(c.Bool("verbose"))
			return nil
		},
		Commands: []*cli.Command{
			serveCommand(),
			tailCommand(),
		},
	}
}

// Run executes the CLI with the given arguments.
func Run(args []string) {
	if err := NewApp().Run(args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
