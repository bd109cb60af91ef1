package main

import (
	"os"

	"github.com/luki/thermalarm/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
