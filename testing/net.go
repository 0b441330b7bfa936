package testing

import (
	"github.com/clktmr/playdate/firmware"
)

// HostResponse scripts the reply served for a request path.
type HostResponse struct {
	Status int
	Body   []byte
	// Err fails the request with this code instead of serving a reply.
	Err firmware.NetErr
}

// HostRequest records a request issued by the game.
type HostRequest struct {
	Method  string
	Server  string
	Path    string
	Headers []byte
	Body    []byte
}

type hostConn struct {
	server string
	resp   *HostResponse
	pos    int
	err    firmware.NetErr
	closed bool

	keepAlive      bool
	connectTimeout int32
	readTimeout    int32
}

func (h *Host) netAPI() *firmware.Network {
	return &firmware.Network{
		GetStatus: func() firmware.WifiStatus { return h.Wifi },
		SetEnabled: func(enabled bool) firmware.NetErr {
			if h.Wifi == firmware.WifiNotAvailable {
				return firmware.NetNoDevice
			}
			h.NetEnabled = enabled
			return firmware.NetOK
		},
		RequestAccess: func(server string, port int32, useSSL bool, purpose string) firmware.AccessReply {
			return h.Access
		},

		NewConnection: func(server string, port int32, useSSL bool) uintptr {
			if h.Access != firmware.AccessAllow {
				return 0
			}
			h.nextHandle++
			h.conns[h.nextHandle] = &hostConn{server: server}
			return h.nextHandle
		},
		SetConnectTimeout: func(conn uintptr, ms int32) {
			if c := h.conns[conn]; c != nil {
				c.connectTimeout = ms
			}
		},
		SetReadTimeout: func(conn uintptr, ms int32) {
			if c := h.conns[conn]; c != nil {
				c.readTimeout = ms
			}
		},
		SetKeepAlive: func(conn uintptr, keepAlive bool) {
			if c := h.conns[conn]; c != nil {
				c.keepAlive = keepAlive
			}
		},

		Get: func(conn uintptr, path string, headers []byte) firmware.NetErr {
			return h.request(conn, "GET", path, headers, nil)
		},
		Post: func(conn uintptr, path string, headers, body []byte) firmware.NetErr {
			return h.request(conn, "POST", path, headers, body)
		},

		GetError: func(conn uintptr) firmware.NetErr {
			if c := h.conns[conn]; c != nil {
				return c.err
			}
			return firmware.NetConnectionClosed
		},
		GetProgress: func(conn uintptr) (read, total int32) {
			c := h.conns[conn]
			if c == nil || c.resp == nil {
				return 0, 0
			}
			return int32(c.pos), int32(len(c.resp.Body))
		},
		GetResponseStatus: func(conn uintptr) int32 {
			c := h.conns[conn]
			if c == nil {
				return int32(firmware.NetConnectionClosed)
			}
			if c.err != firmware.NetOK {
				return int32(c.err)
			}
			if c.resp == nil {
				return 0
			}
			return int32(c.resp.Status)
		},
		GetBytesAvailable: func(conn uintptr) int32 {
			c := h.conns[conn]
			if c == nil || c.resp == nil {
				return 0
			}
			return int32(len(c.resp.Body) - c.pos)
		},
		Read: func(conn uintptr, buf []byte) int32 {
			c := h.conns[conn]
			if c == nil || c.closed {
				return int32(firmware.NetConnectionClosed)
			}
			if c.err != firmware.NetOK {
				return int32(c.err)
			}
			if c.resp == nil {
				return 0
			}
			if c.pos >= len(c.resp.Body) {
				return int32(firmware.NetConnectionClosed)
			}
			n := copy(buf, c.resp.Body[c.pos:])
			c.pos += n
			return int32(n)
		},
		Close: func(conn uintptr) {
			if c := h.conns[conn]; c != nil {
				c.closed = true
			}
		},
		Release: func(conn uintptr) {
			delete(h.conns, conn)
		},
	}
}

func (h *Host) request(conn uintptr, method, path string, headers, body []byte) firmware.NetErr {
	c := h.conns[conn]
	if c == nil || c.closed {
		return firmware.NetConnectionClosed
	}
	h.Requests = append(h.Requests, HostRequest{
		Method:  method,
		Server:  c.server,
		Path:    path,
		Headers: headers,
		Body:    body,
	})

	resp := h.Responses[path]
	if resp == nil {
		resp = &HostResponse{Status: 404}
	}
	if resp.Err != firmware.NetOK {
		c.err = resp.Err
		return resp.Err
	}
	c.resp = resp
	c.pos = 0
	c.err = firmware.NetOK
	return firmware.NetOK
}
