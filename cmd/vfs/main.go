package main

import (
	"os"

	"deskvfs/cmd/vfs/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
