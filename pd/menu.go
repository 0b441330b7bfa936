package pd

import (
	"errors"
)

var ErrMenuFull = errors.New("pd: no menu slot available")

// MenuItem is an entry in the firmware's pause menu. The callback runs on the
// dispatch thread through the menu trampoline, like any other callback.
type MenuItem struct {
	pd       *PD
	handle   uintptr
	callback func(*MenuItem)
}

// The single trampoline registered for every menu item. The firmware hands
// back the item handle, selection of an unknown or stale handle is dropped.
func menuTrampoline(item uintptr) {
	r := gameRunner
	if r == nil || r.state == stateTerminating {
		return
	}
	defer guard("menu")

	if it := current.menu[item]; it != nil && it.callback != nil {
		it.callback(it)
	}
}

func (s System) addMenuItem(handle uintptr, cb func(*MenuItem)) (*MenuItem, error) {
	if handle == 0 {
		return nil, ErrMenuFull
	}
	it := &MenuItem{pd: s.pd, handle: handle, callback: cb}
	s.pd.menu[handle] = it
	return it, nil
}

// AddMenuItem adds a plain entry to the pause menu. The device shows at most
// three custom entries.
func (s System) AddMenuItem(title string, f func()) (*MenuItem, error) {
	return s.addMenuItem(
		s.pd.api.System.AddMenuItem(title, menuTrampoline),
		func(*MenuItem) { f() },
	)
}

// AddCheckmarkMenuItem adds an entry with a toggled checkmark. The callback
// receives the state after the toggle.
func (s System) AddCheckmarkMenuItem(title string, checked bool, f func(bool)) (*MenuItem, error) {
	value := int32(0)
	if checked {
		value = 1
	}
	return s.addMenuItem(
		s.pd.api.System.AddCheckmarkMenuItem(title, value, menuTrampoline),
		func(it *MenuItem) { f(it.Value() != 0) },
	)
}

// AddOptionsMenuItem adds an entry cycling through options. The callback
// receives the index of the selected option.
func (s System) AddOptionsMenuItem(title string, options []string, f func(int)) (*MenuItem, error) {
	return s.addMenuItem(
		s.pd.api.System.AddOptionsMenuItem(title, options, menuTrampoline),
		func(it *MenuItem) { f(it.Value()) },
	)
}

// Value returns the current state of the item: 0 or 1 for checkmark items,
// the option index for options items.
func (m *MenuItem) Value() int {
	return int(m.pd.api.System.GetMenuItemValue(m.handle))
}

func (m *MenuItem) SetValue(v int) {
	m.pd.api.System.SetMenuItemValue(m.handle, int32(v))
}

// Remove takes the item out of the pause menu. The item must not be used
// afterwards.
func (m *MenuItem) Remove() {
	delete(m.pd.menu, m.handle)
	m.pd.api.System.RemoveMenuItem(m.handle)
}
