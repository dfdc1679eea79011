package main

import (
	"fmt"
	"os"

	"github.com/syssam/setof/cmd/setof/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
