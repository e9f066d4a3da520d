package main

import (
	"os"

	"github.com/yndnr/modi-go/internal/cli/command"
)

func main() {
	os.Exit(command.Run(command.App(), os.Args))
}
