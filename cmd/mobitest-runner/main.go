package main

import (
	"os"

	"github.com/devicelab-dev/mobitest-runner/pkg/cli"
)

func main() {
	cli.Run(os.Args)
}
