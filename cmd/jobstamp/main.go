// Command jobstamp runs a command unless its recorded result is still valid,
// replaying the recorded output and exit status instead.
//
//	jobstamp --dependencies in.txt --output-files out.txt -- ./gen in.txt out.txt
package main

import (
	"os"

	"github.com/unkn0wn-root/jobstamp/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
