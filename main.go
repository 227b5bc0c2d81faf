// Command tabularis-csv-plugin turns a folder of .csv / .tsv files into a
// queryable SQL database for the Tabularis host application. Each file
// becomes a table in an in-memory SQLite database; the host talks to the
// worker over newline-delimited JSON-RPC on stdin/stdout.
package main

import (
	"fmt"
	"os"

	"github.com/debba/tabularis-csv-plugin/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}
