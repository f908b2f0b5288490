// Command poctl is the command-line client for purchase orders.
package main

import (
	"os"

	"github.com/erp/purchasing/internal/interfaces/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
