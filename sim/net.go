package sim

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/clktmr/playdate/firmware"
)

// The radio serves a limited number of transfers at once, requests beyond
// that report busy.
const maxTransfers = 4

// netHost serves the Network group from the host's HTTP stack. Transfers run
// on their own goroutines, bounded by the errgroup, and feed the connection
// buffers the game polls from the update callback.
type netHost struct {
	offline bool
	enabled bool

	transfers errgroup.Group

	conns map[uintptr]*netConn
	next  uintptr
}

// netConn is one connection handle. Every field is guarded by mu, shared
// between the game loop and the transfer goroutine.
type netConn struct {
	mu sync.Mutex

	base           string
	keepAlive      bool
	connectTimeout time.Duration
	readTimeout    time.Duration
	client         *http.Client

	busy   bool
	status int32
	total  int32
	buf    []byte
	pos    int
	done   bool
	err    firmware.NetErr
	closed bool
	cancel context.CancelFunc
}

func newNetHost(offline bool) *netHost {
	n := &netHost{
		offline: offline,
		enabled: true,
		conns:   make(map[uintptr]*netConn),
	}
	n.transfers.SetLimit(maxTransfers)
	return n
}

func (n *netHost) close() {
	for _, c := range n.conns {
		c.mu.Lock()
		c.closed = true
		if c.cancel != nil {
			c.cancel()
		}
		c.mu.Unlock()
	}
	n.transfers.Wait()
}

func (n *netHost) api() *firmware.Network {
	return &firmware.Network{
		GetStatus: func() firmware.WifiStatus {
			if n.offline {
				return firmware.WifiNotAvailable
			}
			return firmware.WifiConnected
		},
		SetEnabled: func(enabled bool) firmware.NetErr {
			if n.offline {
				return firmware.NetNoDevice
			}
			n.enabled = enabled
			return firmware.NetOK
		},
		RequestAccess: func(server string, port int32, useSSL bool, purpose string) firmware.AccessReply {
			// The desktop host doesn't ask.
			if n.offline {
				return firmware.AccessDeny
			}
			return firmware.AccessAllow
		},

		NewConnection: func(server string, port int32, useSSL bool) uintptr {
			if n.offline || !n.enabled {
				return 0
			}
			scheme := "http"
			if useSSL {
				scheme = "https"
			}
			n.next++
			n.conns[n.next] = &netConn{
				base: scheme + "://" +
					net.JoinHostPort(server, strconv.Itoa(int(port))),
				keepAlive: true,
			}
			return n.next
		},
		SetConnectTimeout: func(conn uintptr, ms int32) {
			if c := n.conns[conn]; c != nil {
				c.mu.Lock()
				c.connectTimeout = time.Duration(ms) * time.Millisecond
				c.client = nil
				c.mu.Unlock()
			}
		},
		SetReadTimeout: func(conn uintptr, ms int32) {
			if c := n.conns[conn]; c != nil {
				c.mu.Lock()
				c.readTimeout = time.Duration(ms) * time.Millisecond
				c.client = nil
				c.mu.Unlock()
			}
		},
		SetKeepAlive: func(conn uintptr, keepAlive bool) {
			if c := n.conns[conn]; c != nil {
				c.mu.Lock()
				c.keepAlive = keepAlive
				c.client = nil
				c.mu.Unlock()
			}
		},

		Get: func(conn uintptr, path string, headers []byte) firmware.NetErr {
			return n.request(n.conns[conn], "GET", path, headers, nil)
		},
		Post: func(conn uintptr, path string, headers, body []byte) firmware.NetErr {
			return n.request(n.conns[conn], "POST", path, headers, body)
		},

		GetError: func(conn uintptr) firmware.NetErr {
			c := n.conns[conn]
			if c == nil {
				return firmware.NetConnectionClosed
			}
			c.mu.Lock()
			defer c.mu.Unlock()
			return c.err
		},
		GetProgress: func(conn uintptr) (read, total int32) {
			c := n.conns[conn]
			if c == nil {
				return 0, 0
			}
			c.mu.Lock()
			defer c.mu.Unlock()
			return int32(len(c.buf)), c.total
		},
		GetResponseStatus: func(conn uintptr) int32 {
			c := n.conns[conn]
			if c == nil {
				return int32(firmware.NetConnectionClosed)
			}
			c.mu.Lock()
			defer c.mu.Unlock()
			if c.err != firmware.NetOK {
				return int32(c.err)
			}
			return c.status
		},
		GetBytesAvailable: func(conn uintptr) int32 {
			c := n.conns[conn]
			if c == nil {
				return 0
			}
			c.mu.Lock()
			defer c.mu.Unlock()
			return int32(len(c.buf) - c.pos)
		},
		Read: func(conn uintptr, buf []byte) int32 {
			c := n.conns[conn]
			if c == nil {
				return int32(firmware.NetConnectionClosed)
			}
			c.mu.Lock()
			defer c.mu.Unlock()
			switch {
			case c.closed:
				return int32(firmware.NetConnectionClosed)
			case c.err != firmware.NetOK:
				return int32(c.err)
			case c.pos < len(c.buf):
				m := copy(buf, c.buf[c.pos:])
				c.pos += m
				return int32(m)
			case c.done:
				return int32(firmware.NetConnectionClosed)
			}
			return 0
		},
		Close: func(conn uintptr) {
			c := n.conns[conn]
			if c == nil {
				return
			}
			c.mu.Lock()
			c.closed = true
			if c.cancel != nil {
				c.cancel()
			}
			c.mu.Unlock()
		},
		Release: func(conn uintptr) {
			delete(n.conns, conn)
		},
	}
}

func (n *netHost) request(c *netConn, method, path string, headers, body []byte) firmware.NetErr {
	if c == nil {
		return firmware.NetConnectionClosed
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return firmware.NetConnectionClosed
	}
	if c.busy {
		return firmware.NetBusy
	}

	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, method, c.base+path,
		bytes.NewReader(body))
	if err != nil {
		cancel()
		return firmware.NetWriteError
	}
	for _, line := range strings.Split(string(headers), "\r\n") {
		if k, v, ok := strings.Cut(line, ":"); ok {
			req.Header.Set(strings.TrimSpace(k), strings.TrimSpace(v))
		}
	}

	c.status, c.total, c.buf, c.pos = 0, 0, nil, 0
	c.done, c.err = false, firmware.NetOK
	c.cancel = cancel
	c.busy = true
	client := c.httpClient()
	if !n.transfers.TryGo(func() error {
		n.transfer(c, client, req)
		return nil
	}) {
		c.busy = false
		c.cancel = nil
		cancel()
		return firmware.NetBusy
	}
	return firmware.NetOK
}

// httpClient builds the connection's client lazily, so timeouts set before
// the first request apply. Called with mu held.
func (c *netConn) httpClient() *http.Client {
	if c.client == nil {
		c.client = &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: c.connectTimeout,
				}).DialContext,
				ResponseHeaderTimeout: c.readTimeout,
				DisableKeepAlives:     !c.keepAlive,
			},
		}
	}
	return c.client
}

func (n *netHost) transfer(c *netConn, client *http.Client, req *http.Request) {
	resp, err := client.Do(req)
	if err != nil {
		c.fail(transferErr(err, firmware.NetWriteTimeout, firmware.NetWriteError))
		return
	}
	defer resp.Body.Close()

	c.mu.Lock()
	c.status = int32(resp.StatusCode)
	if resp.ContentLength > 0 {
		c.total = int32(resp.ContentLength)
	}
	c.mu.Unlock()

	buf := make([]byte, 4096)
	for {
		m, err := resp.Body.Read(buf)
		if m > 0 {
			c.mu.Lock()
			c.buf = append(c.buf, buf[:m]...)
			c.mu.Unlock()
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			c.fail(transferErr(err, firmware.NetReadTimeout, firmware.NetReadError))
			return
		}
	}

	c.mu.Lock()
	c.done = true
	c.busy = false
	c.cancel = nil
	c.mu.Unlock()
}

func (c *netConn) fail(code firmware.NetErr) {
	c.mu.Lock()
	c.err = code
	c.done = true
	c.busy = false
	c.cancel = nil
	c.mu.Unlock()
}

// transferErr classifies a transport failure: cancellation means the game
// closed the connection, everything else is a timeout or a hard error of the
// failed phase.
func transferErr(err error, timeout, hard firmware.NetErr) firmware.NetErr {
	var nerr net.Error
	switch {
	case errors.Is(err, context.Canceled):
		return firmware.NetConnectionClosed
	case errors.As(err, &nerr) && nerr.Timeout():
		return timeout
	}
	return hard
}
