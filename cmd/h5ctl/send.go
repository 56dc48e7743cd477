package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rigado/h5link/link"
	"github.com/rigado/h5link/transport"
)

func newSendCmd() *cobra.Command {
	var port string
	var baud int

	cmd := &cobra.Command{
		Use:   "send --port <dev> <hex-bytes>",
		Short: "Open a link, send one payload, report delivery",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if port == "" {
				return fmt.Errorf("--port is required")
			}

			payload, err := hex.DecodeString(strings.ReplaceAll(args[0], " ", ""))
			if err != nil {
				return fmt.Errorf("decode hex payload: %w", err)
			}

			lower := transport.NewSerial(port, baud)
			t := link.New(lower)

			if err := t.Open(nil, nil, nil); err != nil {
				return fmt.Errorf("open: %w", err)
			}
			defer t.Close()

			if err := t.Send(payload); err != nil {
				return fmt.Errorf("send: %w", err)
			}

			fmt.Println("delivered")
			return nil
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "serial port device")
	cmd.Flags().IntVarP(&baud, "baud", "b", 1000000, "baud rate")
	return cmd
}
