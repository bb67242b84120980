// Command samctl queries the rating oracle from the terminal.
package main

import (
	"os"

	"github.com/sakif/practice-tracker/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
