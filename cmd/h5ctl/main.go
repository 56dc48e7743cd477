// Command h5ctl is a small operator tool for the H5 three-wire transport:
// opening a real serial link, sending one-off payloads, running an
// in-process negotiation demo over the loopback driver, and dumping the
// persisted diagnostics for a named link. Grounded on
// bigbag-papyrix-flasher's cmd/papyrix-flasher, which shapes its cobra
// commands the same way around a single transport/protocol package pair.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "h5ctl",
		Short: "Operate and inspect H5 three-wire UART links",
	}

	root.AddCommand(newOpenCmd(), newSendCmd(), newDemoCmd(), newStatsCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
