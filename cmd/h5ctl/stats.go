package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rigado/h5link/diag"
)

func defaultDiagPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "h5ctl-diag.json"
	}
	return filepath.Join(home, ".h5ctl", "diag.json")
}

func newStatsCmd() *cobra.Command {
	var storePath string

	cmd := &cobra.Command{
		Use:   "stats <link-name>",
		Short: "Print the persisted diagnostics for a named link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := diag.New(storePath)
			snap, err := store.Load(args[0])
			if err != nil {
				return err
			}

			fmt.Printf("link:             %s\n", args[0])
			fmt.Printf("last state:       %s\n", snap.LastState)
			fmt.Printf("last status:      %s (%s)\n", snap.LastStatus, snap.LastStatusMsg)
			fmt.Printf("config byte:      0x%02X\n", snap.ConfigByte)
			fmt.Printf("outgoing packets: %d\n", snap.Outgoing)
			fmt.Printf("incoming packets: %d\n", snap.Incoming)
			fmt.Printf("error packets:    %d\n", snap.ErrorPackets)
			fmt.Printf("last transition:  %s\n", snap.LastTransitionAt.Format("2006-01-02T15:04:05Z07:00"))
			return nil
		},
	}

	cmd.Flags().StringVar(&storePath, "store", defaultDiagPath(), "diagnostics store file")
	return cmd
}
