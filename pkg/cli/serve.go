package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/mobitest-runner/pkg/config"
	"github.com/devicelab-dev/mobitest-runner/pkg/events"
	"github.com/devicelab-dev/mobitest-runner/pkg/eventserver"
	"github.com/devicelab-dev/mobitest-runner/pkg/logger"
)

// serveCommand runs the local event ingestion server until interrupted.
func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the local event ingestion server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (overrides config)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Listen port, 0 picks a free port (overrides config)",
				Value: -1,
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.LoadFromDir(c.String("workspace"))
			if err != nil {
				return err
			}

			if cfg.LogPath == "" {
				cfg.LogPath = filepath.Join(c.String("workspace"), "mobitest.log")
			}
			if err := logger.Init(cfg.LogPath); err != nil {
				return err
			}
			defer logger.Close()

			host := cfg.EventServer.Host
			if c.IsSet("host") {
				host = c.String("host")
			}
			port := cfg.EventServer.Port
			if c.Int("port") >= 0 {
				port = c.Int("port")
			}

			store := events.NewStore()
			srv := eventserver.New(host, port, store)
			if err := srv.Start(); err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "Event server listening on %s\n", srv.Addr())
			fmt.Fprintf(c.App.Writer, "POST event batches to http://%s/event\n", srv.Addr())

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
			<-sig

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Stop(ctx)
		},
	}
}
