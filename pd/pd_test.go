package pd

import (
	"errors"
	"testing"

	"github.com/clktmr/playdate/firmware"
	pdtesting "github.com/clktmr/playdate/testing"
)

func TestMain(m *testing.M) { pdtesting.TestMain(m) }

func TestInit(t *testing.T) {
	h := newHost(t)

	p, err := Init(h.API)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if p != Get() {
		t.Fatal("stored handle differs")
	}

	if _, err := Init(h.API); !errors.Is(err, ErrAlreadyInitialized) {
		t.Fatalf("expected %v, got %v", ErrAlreadyInitialized, err)
	}
	if Get() != p {
		t.Fatal("second init replaced the handle")
	}
}

func TestInitIncompleteTable(t *testing.T) {
	drop := map[string]func(api *firmware.API){
		"nil":      func(api *firmware.API) {},
		"system":   func(api *firmware.API) { api.System = nil },
		"display":  func(api *firmware.API) { api.Display = nil },
		"graphics": func(api *firmware.API) { api.Graphics = nil },
		"file":     func(api *firmware.API) { api.File = nil },
		"sound":    func(api *firmware.API) { api.Sound = nil },
		"network":  func(api *firmware.API) { api.Network = nil },
	}
	for name, mutate := range drop {
		t.Run(name, func(t *testing.T) {
			h := newHost(t)
			api := h.API
			if name == "nil" {
				api = nil
			} else {
				mutate(api)
			}
			if _, err := Init(api); !errors.Is(err, ErrIncompleteTable) {
				t.Fatalf("expected %v, got %v", ErrIncompleteTable, err)
			}
			if Get() != nil {
				t.Fatal("handle stored despite invalid table")
			}
		})
	}
}

func TestLogf(t *testing.T) {
	h := newHost(t)

	// Before init logging goes nowhere, but must not crash.
	Logf("too early")
	if len(h.Logs) != 0 {
		t.Fatalf("expected no logs, got %v", h.Logs)
	}

	p, err := Init(h.API)
	if err != nil {
		t.Fatal(err)
	}
	Logf("via package, %v times", 1)
	p.Logf("via handle")

	expected := []string{"via package, 1 times", "via handle"}
	if len(h.Logs) != len(expected) {
		t.Fatalf("expected %v logs, got %v", len(expected), h.Logs)
	}
	for i, v := range expected {
		if h.Logs[i] != v {
			t.Fatalf("log %v: expected %q, got %q", i, v, h.Logs[i])
		}
	}
}
