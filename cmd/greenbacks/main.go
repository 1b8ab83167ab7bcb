package main

import (
	"os"

	"github.com/greenbacks-app/greenbacks/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
