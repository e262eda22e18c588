package main

import (
	"os"

	"github.com/idptools/loopscan/cmd"
)

func main() {
	if err := cmd.RootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
