package firmware

import "unsafe"

// The capability table handed over on EventInit. It stays valid for the
// process lifetime and must never be copied or stored twice. Hosts fill in
// every group; a nil group is a contract violation.
type API struct {
	System   *System
	Display  *Display
	Graphics *Graphics
	File     *File
	Sound    *Sound
	Network  *Network
}

// System carries process lifetime, input and menu capabilities.
//
// Error shows the firmware's crash screen and does not return on the device.
// Realloc is the only memory source a game has; with ptr nil it allocates,
// with size 0 it frees.
type System struct {
	Realloc           func(ptr unsafe.Pointer, size uintptr) unsafe.Pointer
	Error             func(msg string)
	LogToConsole      func(msg string)
	SetUpdateCallback func(update func() int32)

	GetButtonState        func() (current, pushed, released Buttons)
	GetCrankAngle         func() float32
	GetCrankChange        func() float32
	IsCrankDocked         func() bool
	SetCrankSoundsEnabled func(enabled bool)

	SetPeripheralsEnabled func(mask Peripherals)
	GetAccelerometer      func() (x, y, z float32)

	GetCurrentTimeMilliseconds func() uint32
	GetElapsedTime             func() float32
	ResetElapsedTime           func()

	GetBatteryPercentage func() float32
	GetBatteryVoltage    func() float32
	GetLanguage          func() Language
	SetAutoLockDisabled  func(disable bool)
	DrawFPS              func(x, y int32)

	AddMenuItem          func(title string, callback func(item uintptr)) uintptr
	AddCheckmarkMenuItem func(title string, value int32, callback func(item uintptr)) uintptr
	AddOptionsMenuItem   func(title string, options []string, callback func(item uintptr)) uintptr
	RemoveMenuItem       func(item uintptr)
	GetMenuItemValue     func(item uintptr) int32
	SetMenuItemValue     func(item uintptr, value int32)
}

// Display controls how the LCD presents the frame.
type Display struct {
	GetWidth       func() int32
	GetHeight      func() int32
	SetRefreshRate func(rate float32)
	SetInverted    func(inverted bool)
	SetScale       func(scale uint32)
	SetOffset      func(dx, dy int32)
	SetFlipped     func(x, y bool)
}

// Graphics exposes the packed working frame and a few primitives drawn by the
// firmware itself. GetFrame returns the full LCDRowBytes*LCDHeight buffer;
// rows touched directly must be reported with MarkUpdatedRows or they are
// never scanned out.
type Graphics struct {
	Clear           func(color SolidColor)
	GetFrame        func() []byte
	GetDisplayFrame func() []byte
	MarkUpdatedRows func(start, end int32)
	Display         func()

	FillRect    func(x, y, w, h int32, color SolidColor)
	DrawRect    func(x, y, w, h int32, color SolidColor)
	DrawLine    func(x1, y1, x2, y2, width int32, color SolidColor)
	FillEllipse func(x, y, w, h int32, startAngle, endAngle float32, color SolidColor)
}

type FileStat struct {
	IsDir bool
	Size  uint32
	Year  int32
	Month int32
	Day   int32
	Hour  int32
	Min   int32
	Sec   int32
}

// File is the per game filesystem. Open returns a zero handle and the cause
// on failure, Read and Write return the transferred count or a negative
// FSErr.
type File struct {
	Open  func(path string, mode FileOptions) (uintptr, FSErr)
	Close func(file uintptr) FSErr
	Read  func(file uintptr, buf []byte) int32
	Write func(file uintptr, buf []byte) int32
	Flush func(file uintptr) int32
	Tell  func(file uintptr) int32
	Seek  func(file uintptr, pos int32, whence int32) FSErr

	Stat      func(path string) (FileStat, FSErr)
	Mkdir     func(path string) FSErr
	Unlink    func(path string, recursive bool) FSErr
	Rename    func(from, to string) FSErr
	ListFiles func(path string, callback func(name string, isDir bool), showHidden bool) FSErr
}

// Sound drives sample and file players through opaque handles. A zero handle
// reports failure. Players obtained from NewFilePlayer are loaded with
// LoadIntoPlayer, players from NewSamplePlayer play decoded samples assigned
// with SetSample.
type Sound struct {
	GetCurrentTime   func() uint32
	SetOutputsActive func(headphone, speaker bool)

	LoadSample func(path string) uintptr
	FreeSample func(sample uintptr)

	NewSamplePlayer func() uintptr
	NewFilePlayer   func() uintptr
	FreePlayer      func(player uintptr)

	SetSample      func(player, sample uintptr) int32
	LoadIntoPlayer func(player uintptr, path string) int32
	Play           func(player uintptr, repeat int32, rate float32) int32
	Stop           func(player uintptr)
	SetPaused      func(player uintptr, paused bool)
	IsPlaying      func(player uintptr) bool
	SetVolume      func(player uintptr, left, right float32)
	Volume         func(player uintptr) (left, right float32)
	SetRate        func(player uintptr, rate float32)
	Length         func(player uintptr) float32
	SetOffset      func(player uintptr, seconds float32)
	Offset         func(player uintptr) float32
}

// Network is the HTTP subsystem. Connections are opaque handles, Read returns
// the transferred count, zero while no response data has arrived yet and a
// negative NetErr on failure, NetConnectionClosed once the body is drained.
type Network struct {
	GetStatus     func() WifiStatus
	SetEnabled    func(enabled bool) NetErr
	RequestAccess func(server string, port int32, useSSL bool, purpose string) AccessReply

	NewConnection     func(server string, port int32, useSSL bool) uintptr
	SetConnectTimeout func(conn uintptr, ms int32)
	SetReadTimeout    func(conn uintptr, ms int32)
	SetKeepAlive      func(conn uintptr, keepAlive bool)

	Get  func(conn uintptr, path string, headers []byte) NetErr
	Post func(conn uintptr, path string, headers, body []byte) NetErr

	GetError          func(conn uintptr) NetErr
	GetProgress       func(conn uintptr) (read, total int32)
	GetResponseStatus func(conn uintptr) int32
	GetBytesAvailable func(conn uintptr) int32
	Read              func(conn uintptr, buf []byte) int32
	Close             func(conn uintptr)
	Release           func(conn uintptr)
}
