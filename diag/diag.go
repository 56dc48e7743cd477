// Package diag persists per-link diagnostic snapshots to a JSON file, for
// field debugging of a link that is no longer running: the last negotiated
// config octet, cumulative packet/error counters, and the timestamp and
// status code of the most recent state transition. Grounded on rigado-ble's
// cache package, which persists GATT profiles to a JSON file the same way.
package diag

import (
	"io/ioutil"
	"os"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/rigado/h5link/link"
)

// Snapshot is the persisted state for one named link.
type Snapshot struct {
	ConfigByte       byte            `json:"config_byte"`
	Outgoing         uint64          `json:"outgoing"`
	Incoming         uint64          `json:"incoming"`
	ErrorPackets     uint64          `json:"error_packets"`
	LastState        link.State      `json:"last_state"`
	LastStatus       link.StatusCode `json:"last_status"`
	LastStatusMsg    string          `json:"last_status_msg"`
	LastTransitionAt time.Time       `json:"last_transition_at"`
}

// Store is a JSON file holding one Snapshot per named link, safe for
// concurrent use.
type Store struct {
	filename string
	lock     sync.RWMutex
}

// New returns a Store backed by filename. The file is created on first
// write; it is not required to exist yet.
func New(filename string) *Store {
	return &Store{filename: filename}
}

// Record stores stats as the latest snapshot for name, stamped with the
// current status and the given transition time.
func (s *Store) Record(name string, stats link.Stats, at time.Time) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	all, err := s.loadExisting()
	if err != nil {
		return err
	}

	all[name] = Snapshot{
		ConfigByte:       stats.ConfigByte,
		Outgoing:         stats.Outgoing,
		Incoming:         stats.Incoming,
		ErrorPackets:     stats.ErrorPackets,
		LastState:        stats.LastState,
		LastStatus:       stats.LastStatus,
		LastStatusMsg:    stats.LastStatusMsg,
		LastTransitionAt: at,
	}

	return s.store(all)
}

// Load returns the snapshot last recorded for name.
func (s *Store) Load(name string) (Snapshot, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	all, err := s.loadExisting()
	if err != nil {
		return Snapshot{}, err
	}

	snap, ok := all[name]
	if !ok {
		return Snapshot{}, errors.Errorf("diag: no snapshot recorded for %q", name)
	}
	return snap, nil
}

// List returns every link name with a recorded snapshot.
func (s *Store) List() ([]string, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	all, err := s.loadExisting()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	return names, nil
}

// Clear removes the store file entirely.
func (s *Store) Clear() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if err := os.Remove(s.filename); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "remove diag store")
	}
	return nil
}

func (s *Store) loadExisting() (map[string]Snapshot, error) {
	_, err := os.Stat(s.filename)
	if os.IsNotExist(err) {
		return map[string]Snapshot{}, nil
	}

	in, err := ioutil.ReadFile(s.filename)
	if err != nil {
		return nil, errors.Wrap(err, "read diag store")
	}

	var all map[string]Snapshot
	if err := jsoniter.Unmarshal(in, &all); err != nil {
		return nil, errors.Wrap(err, "unmarshal diag store")
	}
	return all, nil
}

func (s *Store) store(all map[string]Snapshot) error {
	out, err := jsoniter.Marshal(all)
	if err != nil {
		return errors.Wrap(err, "marshal diag store")
	}
	return errors.Wrap(ioutil.WriteFile(s.filename, out, 0644), "write diag store")
}
