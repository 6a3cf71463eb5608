// Command bpd is a long-running Bundle Protocol v6 store-and-forward
// daemon: it loads a channel configuration, opens each channel's storage
// handles, and serves an operational HTTP surface until told to stop.
package main

import (
	"fmt"
	"os"

	"github.com/dtn-stack/bplib/cmd/bpd/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
