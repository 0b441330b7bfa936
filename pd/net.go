package pd

import (
	"bytes"
	"errors"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/clktmr/playdate/firmware"
)

// ErrAccessDenied is returned when the user or the system denied network
// access for this game.
var ErrAccessDenied = errors.New("pd: network access denied")

// NetError is a firmware network status annotated with the failed operation.
type NetError struct {
	Op   string
	Code firmware.NetErr
}

func (e *NetError) Error() string {
	return "pd: net " + e.Op + ": " + e.Code.String()
}

func netErr(op string, code firmware.NetErr) error {
	if code == firmware.NetOK {
		return nil
	}
	return &NetError{Op: op, Code: code}
}

// Net reaches the wifi subsystem. All transfers are asynchronous, an update
// callback that waits for them to finish stalls the whole game.
type Net struct{ pd *PD }

// Status reports whether the device is associated with an access point.
func (n Net) Status() firmware.WifiStatus {
	return n.pd.api.Network.GetStatus()
}

// SetEnabled powers the wifi hardware up or down.
func (n Net) SetEnabled(enabled bool) error {
	return netErr("enable", n.pd.api.Network.SetEnabled(enabled))
}

// RequestAccess asks the user to allow connections to server. With an empty
// server the request covers any host. The purpose is shown in the dialog.
// While the dialog is pending the reply is AccessAsk, the final answer
// arrives on a later frame.
func (n Net) RequestAccess(server string, port int, useSSL bool, purpose string) firmware.AccessReply {
	return n.pd.api.Network.RequestAccess(server, int32(port), useSSL, purpose)
}

// Connect opens an HTTP connection to server. Access must have been granted
// with RequestAccess first.
func (n Net) Connect(server string, port int, useSSL bool) (*HTTPConn, error) {
	handle := n.pd.api.Network.NewConnection(server, int32(port), useSSL)
	if handle == 0 {
		return nil, ErrAccessDenied
	}
	return &HTTPConn{pd: n.pd, handle: handle, server: server}, nil
}

// HTTPConn is a connection to a single server. Requests don't block, poll
// the response with Status and Read across frames.
type HTTPConn struct {
	pd     *PD
	handle uintptr
	server string
}

// headerBytes renders headers as wire lines, sorted for a stable order.
func headerBytes(headers map[string]string) []byte {
	if len(headers) == 0 {
		return nil
	}
	var buf bytes.Buffer
	for _, k := range slices.Sorted(maps.Keys(headers)) {
		buf.WriteString(k)
		buf.WriteString(": ")
		buf.WriteString(headers[k])
		buf.WriteString("\r\n")
	}
	return buf.Bytes()
}

// Get issues a GET request for path. The response body becomes available
// through Read once it arrives.
func (c *HTTPConn) Get(path string, headers map[string]string) error {
	return netErr("get", c.pd.api.Network.Get(c.handle, path, headerBytes(headers)))
}

// Post issues a POST request for path with the given body.
func (c *HTTPConn) Post(path string, headers map[string]string, body []byte) error {
	return netErr("post", c.pd.api.Network.Post(c.handle, path, headerBytes(headers), body))
}

// Err returns the sticky error state of the connection, nil while it is
// healthy.
func (c *HTTPConn) Err() error {
	return netErr("request", c.pd.api.Network.GetError(c.handle))
}

// Status returns the HTTP status code of the response, zero while the header
// hasn't arrived yet.
func (c *HTTPConn) Status() (int, error) {
	status := c.pd.api.Network.GetResponseStatus(c.handle)
	if status < 0 {
		return 0, netErr("status", firmware.NetErr(status))
	}
	return int(status), nil
}

// Progress returns the received and the expected byte count of the response.
// The total is zero if the server didn't announce a length.
func (c *HTTPConn) Progress() (read, total int) {
	r, t := c.pd.api.Network.GetProgress(c.handle)
	return int(r), int(t)
}

// BytesAvailable returns how many bytes Read would return without waiting.
func (c *HTTPConn) BytesAvailable() int {
	return int(c.pd.api.Network.GetBytesAvailable(c.handle))
}

// Read drains the response body. It returns io.EOF once the body is
// complete. A zero count before that means no data has arrived yet, check
// BytesAvailable before reading to avoid busy frames.
func (c *HTTPConn) Read(p []byte) (int, error) {
	n := c.pd.api.Network.Read(c.handle, p)
	if n < 0 {
		if firmware.NetErr(n) == firmware.NetConnectionClosed {
			return 0, io.EOF
		}
		return 0, netErr("read", firmware.NetErr(n))
	}
	return int(n), nil
}

// SetConnectTimeout bounds how long connection establishment may take.
func (c *HTTPConn) SetConnectTimeout(d time.Duration) {
	c.pd.api.Network.SetConnectTimeout(c.handle, int32(d.Milliseconds()))
}

// SetReadTimeout bounds how long the firmware waits for response data.
func (c *HTTPConn) SetReadTimeout(d time.Duration) {
	c.pd.api.Network.SetReadTimeout(c.handle, int32(d.Milliseconds()))
}

// SetKeepAlive keeps the underlying TCP connection open between requests.
func (c *HTTPConn) SetKeepAlive(keepAlive bool) {
	c.pd.api.Network.SetKeepAlive(c.handle, keepAlive)
}

// Close shuts the connection down and releases it. The connection must not
// be used afterwards.
func (c *HTTPConn) Close() error {
	c.pd.api.Network.Close(c.handle)
	c.pd.api.Network.Release(c.handle)
	return nil
}
