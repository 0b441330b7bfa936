package pd

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/clktmr/playdate/firmware"
	pdtesting "github.com/clktmr/playdate/testing"
)

func TestHTTPGet(t *testing.T) {
	h := newHost(t)
	p, err := Init(h.API)
	if err != nil {
		t.Fatal(err)
	}
	h.Responses["/scores"] = &pdtesting.HostResponse{
		Status: 200,
		Body:   []byte(`{"best":9000}`),
	}

	conn, err := p.Net().Connect("example.com", 443, true)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	conn.SetConnectTimeout(5 * time.Second)
	conn.SetReadTimeout(time.Second)
	conn.SetKeepAlive(true)

	headers := map[string]string{
		"X-Token":  "abc",
		"Accept":   "application/json",
		"X-Player": "niklas",
	}
	if err := conn.Get("/scores", headers); err != nil {
		t.Fatal(err)
	}

	status, err := conn.Status()
	if err != nil || status != 200 {
		t.Fatalf("expected status 200, got %v, %v", status, err)
	}
	if n := conn.BytesAvailable(); n != 13 {
		t.Fatalf("expected 13 bytes available, got %v", n)
	}

	body, err := io.ReadAll(conn)
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != `{"best":9000}` {
		t.Fatalf("unexpected body %q", body)
	}
	if read, total := conn.Progress(); read != 13 || total != 13 {
		t.Fatalf("expected 13/13, got %v/%v", read, total)
	}

	if len(h.Requests) != 1 {
		t.Fatalf("expected 1 request, got %v", len(h.Requests))
	}
	req := h.Requests[0]
	if req.Method != "GET" || req.Server != "example.com" || req.Path != "/scores" {
		t.Fatalf("unexpected request %+v", req)
	}
	// Header lines are sorted for a stable wire format.
	expected := "Accept: application/json\r\nX-Player: niklas\r\nX-Token: abc\r\n"
	if string(req.Headers) != expected {
		t.Fatalf("expected %q, got %q", expected, req.Headers)
	}
}

func TestHTTPPost(t *testing.T) {
	h := newHost(t)
	p, err := Init(h.API)
	if err != nil {
		t.Fatal(err)
	}
	h.Responses["/submit"] = &pdtesting.HostResponse{Status: 204}

	conn, err := p.Net().Connect("example.com", 443, true)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	if err := conn.Post("/submit", nil, []byte("best=9000")); err != nil {
		t.Fatal(err)
	}
	if status, _ := conn.Status(); status != 204 {
		t.Fatalf("expected status 204, got %v", status)
	}
	if string(h.Requests[0].Body) != "best=9000" {
		t.Fatalf("unexpected body %q", h.Requests[0].Body)
	}
}

func TestNetErrorCode(t *testing.T) {
	h := newHost(t)
	p, err := Init(h.API)
	if err != nil {
		t.Fatal(err)
	}
	h.Responses["/flaky"] = &pdtesting.HostResponse{Err: firmware.NetReadTimeout}

	conn, err := p.Net().Connect("example.com", 80, false)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	err = conn.Get("/flaky", nil)
	var nerr *NetError
	if !errors.As(err, &nerr) {
		t.Fatalf("expected a net error, got %T", err)
	}
	if nerr.Code != firmware.NetReadTimeout || nerr.Op != "get" {
		t.Fatalf("unexpected error %+v", nerr)
	}

	// The failure is sticky on the connection.
	if err := conn.Err(); !errors.As(err, &nerr) {
		t.Fatalf("expected a net error, got %v", err)
	}
}

func TestAccessDenied(t *testing.T) {
	h := newHost(t)
	p, err := Init(h.API)
	if err != nil {
		t.Fatal(err)
	}
	h.Access = firmware.AccessDeny

	if got := p.Net().RequestAccess("example.com", 443, true, "leaderboards"); got != firmware.AccessDeny {
		t.Fatalf("expected %v, got %v", firmware.AccessDeny, got)
	}
	if _, err := p.Net().Connect("example.com", 443, true); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected %v, got %v", ErrAccessDenied, err)
	}
}

func TestWifiStatus(t *testing.T) {
	h := newHost(t)
	p, err := Init(h.API)
	if err != nil {
		t.Fatal(err)
	}

	if got := p.Net().Status(); got != firmware.WifiConnected {
		t.Fatalf("expected %v, got %v", firmware.WifiConnected, got)
	}

	if err := p.Net().SetEnabled(true); err != nil {
		t.Fatal(err)
	}
	if !h.NetEnabled {
		t.Fatal("wifi not enabled")
	}

	h.Wifi = firmware.WifiNotAvailable
	err = p.Net().SetEnabled(true)
	var nerr *NetError
	if !errors.As(err, &nerr) || nerr.Code != firmware.NetNoDevice {
		t.Fatalf("expected no device error, got %v", err)
	}
}
