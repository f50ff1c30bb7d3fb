package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	json "github.com/goccy/go-json"

	"github.com/devicelab-dev/mobitest-runner/pkg/events"
	"github.com/devicelab-dev/mobitest-runner/pkg/verify"
)

// tailCommand ingests raw payloads (one JSON document per line) from a file
// or stdin and prints the events that pass the given filters.
func tailCommand() *cli.Command {
	return &cli.Command{
		Name:      "tail",
		Usage:     "Ingest payloads from a file (or stdin) and print matching events",
		ArgsUsage: "[payload-file]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "name",
				Usage: "Filter by event name",
			},
			&cli.StringFlag{
				Name:  "name-mode",
				Usage: "Name comparison: exact, contains, starts_with, regex",
				Value: "exact",
			},
			&cli.StringFlag{
				Name:  "contains",
				Usage: "JSON subset the event data must contain",
			},
			&cli.StringFlag{
				Name:  "where",
				Usage: "JavaScript predicate over (event, body)",
			},
		},
		Action: func(c *cli.Context) error {
			var in io.Reader = os.Stdin
			if c.Args().Len() > 0 {
				f, err := os.Open(c.Args().First()) //#nosec G304 -- user-provided payload file
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			store := events.NewStore()
			ingestor := events.NewIngestor(store)

			scanner := bufio.NewScanner(in)
			scanner.Buffer(make([]byte, 0, 64*1024), 4<<20)
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				ingestor.Ingest(line)
			}
			if err := scanner.Err(); err != nil {
				return err
			}

			filter := verify.Filter{
				Name:         c.String("name"),
				NameMode:     verify.MatchMode(c.String("name-mode")),
				JSONContains: c.String("contains"),
			}
			if expr := c.String("where"); expr != "" {
				where, err := verify.CompilePredicate(expr)
				if err != nil {
					return err
				}
				filter.Where = where
			}

			verifier := verify.NewVerifier(store, nil)
			for _, ev := range verifier.FilterEvents(filter) {
				out, err := json.Marshal(ev)
				if err != nil {
					continue
				}
				fmt.Fprintln(c.App.Writer, string(out))
			}
			return nil
		},
	}
}
