package main

import (
	"os"

	"github.com/platotv/plato/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
