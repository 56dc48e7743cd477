package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rigado/h5link/diag"
	"github.com/rigado/h5link/link"
	"github.com/rigado/h5link/transport"
)

func newOpenCmd() *cobra.Command {
	var port string
	var baud int
	var storePath string
	var name string

	cmd := &cobra.Command{
		Use:   "open",
		Short: "Open a real serial link and stream inbound payloads",
		RunE: func(cmd *cobra.Command, args []string) error {
			if port == "" {
				return fmt.Errorf("--port is required")
			}
			if name == "" {
				name = port
			}

			lower := transport.NewSerial(port, baud)
			t := link.New(lower)
			store := diag.New(storePath)

			status := func(code link.StatusCode, message string) {
				fmt.Printf("status: %s: %s\n", code, message)
				store.Record(name, t.Snapshot(), time.Now())
			}
			data := func(payload []byte) {
				fmt.Printf("<- % X\n", payload)
			}
			logf := func(level link.LogLevel, message string) {
				fmt.Printf("log: %s\n", message)
			}

			if err := t.Open(status, data, logf); err != nil {
				return fmt.Errorf("open: %w", err)
			}
			fmt.Printf("link active on %s @ %d baud\n", port, baud)

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
			<-sig

			fmt.Println("closing...")
			err := t.Close()
			store.Record(name, t.Snapshot(), time.Now())
			return err
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "serial port device")
	cmd.Flags().IntVarP(&baud, "baud", "b", 1000000, "baud rate")
	cmd.Flags().StringVar(&name, "name", "", "link name under which to persist diagnostics (default: port)")
	cmd.Flags().StringVar(&storePath, "store", defaultDiagPath(), "diagnostics store file")
	return cmd
}
