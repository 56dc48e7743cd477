package diag

import (
	"os"
	"testing"
	"time"

	"github.com/rigado/h5link/link"
)

func TestStoreRecordAndLoad(t *testing.T) {
	defer os.Remove("./test.diag")

	s := New("./test.diag")
	stats := link.Stats{
		Outgoing:      3,
		Incoming:      5,
		ErrorPackets:  1,
		LastState:     link.StateActive,
		LastStatus:    link.StatusConnectionActive,
		LastStatusMsg: "connection active",
		ConfigByte:    0x2C,
	}
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	if err := s.Record("uut", stats, at); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	got, err := s.Load("uut")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got.Outgoing != stats.Outgoing || got.Incoming != stats.Incoming || got.ErrorPackets != stats.ErrorPackets {
		t.Fatalf("Load() counters = %+v, want from %+v", got, stats)
	}
	if got.LastState != stats.LastState || got.LastStatus != stats.LastStatus {
		t.Fatalf("Load() state/status = %+v, want from %+v", got, stats)
	}
	if got.ConfigByte != stats.ConfigByte {
		t.Fatalf("Load().ConfigByte = 0x%02X, want 0x%02X", got.ConfigByte, stats.ConfigByte)
	}
	if !got.LastTransitionAt.Equal(at) {
		t.Fatalf("Load().LastTransitionAt = %v, want %v", got.LastTransitionAt, at)
	}
}

func TestLoadMissingNameErrors(t *testing.T) {
	defer os.Remove("./test2.diag")

	s := New("./test2.diag")
	if _, err := s.Load("nope"); err == nil {
		t.Fatal("Load() error = nil, want non-nil for unrecorded name")
	}
}

func TestStoreListAndClear(t *testing.T) {
	defer os.Remove("./test3.diag")

	s := New("./test3.diag")
	if err := s.Record("a", link.Stats{}, time.Now()); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := s.Record("b", link.Stats{}, time.Now()); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	names, err := s.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("List() = %v, want 2 entries", names)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if _, err := os.Stat("./test3.diag"); !os.IsNotExist(err) {
		t.Fatalf("Clear() left the file behind: %v", err)
	}
}
