// main is the entry point for the fwchore CLI.
package main

import (
	"fmt"
	"os"

	"github.com/huangsam/fwchore/cmd"
	"github.com/huangsam/fwchore/internal/iocache"
)

func main() {
	defer iocache.CloseHistory()

	if err := cmd.Execute(); err != nil {
		fmt.Println("❌", err)
		os.Exit(1)
	}
}
