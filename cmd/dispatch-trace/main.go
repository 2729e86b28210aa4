package main

import (
	"os"

	"github.com/lab47/dispatch/pkg/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
