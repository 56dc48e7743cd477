package transport

import (
	"net"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/rigado/h5link/link"
)

// TCP is a net.Conn-backed link.LowerTransport for link emulators and
// virtual COM bridges (e.g. a socat or nRF Connect virtual port exposed
// over TCP) that speak the raw H5 byte stream, grounded on the same
// read-loop-with-bounded-timeout idiom as Serial.
type TCP struct {
	addr string

	wmu  sync.Mutex
	conn net.Conn

	closeCh chan struct{}
	wg      sync.WaitGroup
}

// NewTCP returns a TCP driver dialing addr, unopened.
func NewTCP(addr string) *TCP {
	return &TCP{addr: addr}
}

// Open implements link.LowerTransport.
func (c *TCP) Open(status link.StatusFunc, data link.LowerDataFunc, logf link.LogFunc) error {
	conn, err := net.DialTimeout("tcp", c.addr, 5*time.Second)
	if err != nil {
		return errors.Wrapf(err, "dial %s", c.addr)
	}

	c.wmu.Lock()
	c.conn = conn
	c.wmu.Unlock()

	c.closeCh = make(chan struct{})
	c.wg.Add(1)
	go c.rxLoop(status, data)

	if logf != nil {
		logf(link.LogInfo, "tcp link "+c.addr+" connected")
	}
	return nil
}

// Close implements link.LowerTransport.
func (c *TCP) Close() error {
	c.wmu.Lock()
	conn := c.conn
	c.wmu.Unlock()

	if conn == nil {
		return nil
	}

	close(c.closeCh)
	err := conn.Close()
	c.wg.Wait()

	c.wmu.Lock()
	c.conn = nil
	c.wmu.Unlock()

	return errors.Wrap(err, "close tcp link")
}

// Send implements link.LowerTransport.
func (c *TCP) Send(b []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()

	if c.conn == nil {
		return errors.New("tcp: send on closed link")
	}

	_, err := c.conn.Write(b)
	return errors.Wrap(err, "write tcp link")
}

func (c *TCP) rxLoop(status link.StatusFunc, data link.LowerDataFunc) {
	defer c.wg.Done()

	buf := make([]byte, 4096)

	for {
		c.wmu.Lock()
		conn := c.conn
		c.wmu.Unlock()
		if conn == nil {
			return
		}

		conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
		n, err := conn.Read(buf)
		if n > 0 && data != nil {
			data(append([]byte(nil), buf[:n]...))
		}

		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				select {
				case <-c.closeCh:
					return
				default:
					continue
				}
			}
			select {
			case <-c.closeCh:
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
