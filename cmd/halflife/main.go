package main

import (
	"os"

	"github.com/lazypower/halflife/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
