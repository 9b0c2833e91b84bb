package main

import (
	"os"

	"github.com/bnema/legalai-cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
