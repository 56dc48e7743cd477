package transport

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.bug.st/serial"

	"github.com/rigado/h5link/link"
)

// Serial is a real UART/USB-CDC link.LowerTransport, built on
// go.bug.st/serial and configured 8N1. Its read loop uses a bounded
// per-read timeout so the data callback is never blocked indefinitely,
// grounded on bigbag-papyrix-flasher's internal/serial.Port and
// rigado-ble's linux/hci/h4 receive-loop idiom.
type Serial struct {
	portName string
	baud     int

	wmu  sync.Mutex
	port serial.Port

	closeCh chan struct{}
	wg      sync.WaitGroup
}

// NewSerial returns a Serial driver for portName at baud, unopened.
func NewSerial(portName string, baud int) *Serial {
	return &Serial{portName: portName, baud: baud}
}

// Open implements link.LowerTransport.
func (s *Serial) Open(status link.StatusFunc, data link.LowerDataFunc, logf link.LogFunc) error {
	mode := &serial.Mode{
		BaudRate: s.baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(s.portName, mode)
	if err != nil {
		return errors.Wrapf(err, "open serial port %s", s.portName)
	}

	if err := port.SetReadTimeout(100 * time.Millisecond); err != nil {
		port.Close()
		return errors.Wrap(err, "set read timeout")
	}

	s.wmu.Lock()
	s.port = port
	s.wmu.Unlock()

	s.closeCh = make(chan struct{})
	s.wg.Add(1)
	go s.rxLoop(status, data, logf)

	if logf != nil {
		logf(link.LogInfo, "serial port "+s.portName+" opened")
	}
	return nil
}

// Close implements link.LowerTransport.
func (s *Serial) Close() error {
	s.wmu.Lock()
	port := s.port
	s.wmu.Unlock()

	if port == nil {
		return nil
	}

	close(s.closeCh)
	err := port.Close()
	s.wg.Wait()

	s.wmu.Lock()
	s.port = nil
	s.wmu.Unlock()

	return errors.Wrap(err, "close serial port")
}

// Send implements link.LowerTransport.
func (s *Serial) Send(b []byte) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()

	if s.port == nil {
		return errors.New("serial: send on closed port")
	}

	_, err := s.port.Write(b)
	return errors.Wrap(err, "write serial port")
}

func (s *Serial) rxLoop(status link.StatusFunc, data link.LowerDataFunc, _ link.LogFunc) {
	defer s.wg.Done()

	buf := make([]byte, 1024)

	for {
		select {
		case <-s.closeCh:
			return
		default:
		}

		s.wmu.Lock()
		port := s.port
		s.wmu.Unlock()
		if port == nil {
			return
		}

		n, err := port.Read(buf)
		if n > 0 && data != nil {
			data(append([]byte(nil), buf[:n]...))
		}
		if err != nil {
			select {
			case <-s.closeCh:
				return
			default:
			}
			if status != nil {
				status(link.StatusIOResourcesUnavailable, err.Error())
			}
			return
		}
	}
}
