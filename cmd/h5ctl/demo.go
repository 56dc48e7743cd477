package main

import (
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/rigado/h5link/link"
	"github.com/rigado/h5link/transport"
)

func newDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Negotiate and exchange a payload between two in-process loopback peers",
		RunE:  runDemo,
	}
}

func runDemo(cmd *cobra.Command, args []string) error {
	lowerA, lowerB := transport.NewLoopbackPair("peerA", "peerB")
	a := link.New(lowerA)
	b := link.New(lowerB)

	var received [2][]byte
	recvA := func(p []byte) { received[0] = p }
	recvB := func(p []byte) { received[1] = p }

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("negotiating"),
		progressbar.OptionSpinnerType(14),
	)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			default:
				bar.Add(1)
				time.Sleep(50 * time.Millisecond)
			}
		}
	}()

	errA := make(chan error, 1)
	errB := make(chan error, 1)
	go func() { errA <- a.Open(nil, recvA, nil) }()
	go func() { errB <- b.Open(nil, recvB, nil) }()

	if err := <-errA; err != nil {
		close(done)
		return fmt.Errorf("peer A open: %w", err)
	}
	if err := <-errB; err != nil {
		close(done)
		return fmt.Errorf("peer B open: %w", err)
	}
	close(done)
	bar.Finish()
	fmt.Println()
	fmt.Println("both peers ACTIVE")

	payloadA := []byte{0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA}
	payloadB := []byte{0xBB, 0xBB, 0xBB, 0xBB, 0xBB, 0xBB}

	if err := a.Send(payloadA); err != nil {
		return fmt.Errorf("peer A send: %w", err)
	}
	if err := b.Send(payloadB); err != nil {
		return fmt.Errorf("peer B send: %w", err)
	}

	time.Sleep(100 * time.Millisecond)
	fmt.Printf("peer B received: % X\n", received[1])
	fmt.Printf("peer A received: % X\n", received[0])

	a.Close()
	b.Close()
	return nil
}
