package main

import (
	"os"

	"github.com/atelier-hq/atelier/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
