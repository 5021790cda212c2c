package main

import (
	"fmt"
	"os"

	"github.com/jhoicas/zatca-einvoice/internal/interfaces/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "zatca: %v\n", err)
		os.Exit(1)
	}
}
