package main

import (
	"os"

	"github.com/kaizlabs/kaizbot/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
