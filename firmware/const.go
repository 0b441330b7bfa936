package firmware

import "strings"

// Geometry of the LCD. Rows are packed 1bpp with the most significant bit
// being the leftmost pixel. Each row is padded to 52 bytes, of which 50 carry
// pixels.
const (
	LCDWidth    = 400
	LCDHeight   = 240
	LCDRowBytes = 52
)

// A set bit in the framebuffer lights the pixel, i.e. draws it white.
type SolidColor int32

const (
	ColorBlack SolidColor = iota
	ColorWhite
	ColorClear
	ColorXOR
)

// Events delivered to the registered event handler. The first event after
// launch is always EventInit, with the capability table valid from that point
// on.
type SystemEvent int32

const (
	EventInit        SystemEvent = iota // capability table handed over
	EventInitLua                        // scripting runtime is up, unused here
	EventLock                           // device locked
	EventUnlock                         // device unlocked
	EventPause                          // system menu opened
	EventResume                         // system menu closed
	EventTerminate                      // game is about to be unloaded
	EventKeyPressed                     // arg carries the keycode
	EventKeyReleased                    // arg carries the keycode
	EventLowPower                       // device is about to power down
)

func (e SystemEvent) String() string {
	switch e {
	case EventInit:
		return "init"
	case EventInitLua:
		return "initlua"
	case EventLock:
		return "lock"
	case EventUnlock:
		return "unlock"
	case EventPause:
		return "pause"
	case EventResume:
		return "resume"
	case EventTerminate:
		return "terminate"
	case EventKeyPressed:
		return "keypressed"
	case EventKeyReleased:
		return "keyreleased"
	case EventLowPower:
		return "lowpower"
	}
	return "unknown"
}

type Buttons uint32

const (
	ButtonLeft Buttons = 1 << iota
	ButtonRight
	ButtonUp
	ButtonDown
	ButtonB
	ButtonA
)

var buttonNames = [...]string{
	"←",
	"→",
	"↑",
	"↓",
	"B",
	"A",
}

func (b Buttons) String() string {
	var sb strings.Builder
	for i, v := range buttonNames {
		if b&(1<<i) != 0 {
			if sb.Len() != 0 {
				sb.WriteString(" + ")
			}
			sb.WriteString(v)
		}
	}
	return sb.String()
}

type Peripherals uint16

const (
	PeripheralNone          Peripherals = 0x0
	PeripheralAccelerometer Peripherals = 0x1
	PeripheralAll           Peripherals = 0xffff
)

type Language int32

const (
	LanguageEnglish Language = iota
	LanguageJapanese
)

// Modes for File.Open. Read opens inside the read-only game bundle, ReadData
// inside the writable data directory. Write and Append always address the
// data directory.
type FileOptions int32

const (
	FileRead FileOptions = 1 << iota
	FileReadData
	FileWrite
	FileAppend
)

// Error codes of the File group. Calls returning a count use negative values
// of this type to report failure.
type FSErr int32

const (
	FSOK        FSErr = 0
	FSNoEntry   FSErr = -1 // path does not exist
	FSExists    FSErr = -2
	FSNotDir    FSErr = -3
	FSBadHandle FSErr = -4 // closed or foreign handle
	FSInvalid   FSErr = -5 // bad mode, whence or name
	FSNoSpace   FSErr = -6
	FSIO        FSErr = -7
)

func (e FSErr) String() string {
	switch e {
	case FSOK:
		return "ok"
	case FSNoEntry:
		return "no such file or directory"
	case FSExists:
		return "file exists"
	case FSNotDir:
		return "not a directory"
	case FSBadHandle:
		return "bad file handle"
	case FSInvalid:
		return "invalid argument"
	case FSNoSpace:
		return "no space left"
	case FSIO:
		return "i/o error"
	}
	return "unknown"
}

// Error codes of the Network group.
type NetErr int32

const (
	NetOK                 NetErr = 0
	NetNoDevice           NetErr = -1
	NetBusy               NetErr = -2
	NetWriteError         NetErr = -3
	NetWriteBusy          NetErr = -4
	NetWriteTimeout       NetErr = -5
	NetReadError          NetErr = -6
	NetReadBusy           NetErr = -7
	NetReadTimeout        NetErr = -8
	NetReadOverflow       NetErr = -9
	NetFrameError         NetErr = -10
	NetBadResponse        NetErr = -11
	NetErrorResponse      NetErr = -12
	NetResetTimeout       NetErr = -13
	NetBufferTooSmall     NetErr = -14
	NetUnexpectedResponse NetErr = -15
	NetNotConnectedToAP   NetErr = -16
	NetNotImplemented     NetErr = -17
	NetConnectionClosed   NetErr = -18
)

func (e NetErr) String() string {
	switch e {
	case NetOK:
		return "ok"
	case NetNoDevice:
		return "no device"
	case NetBusy:
		return "busy"
	case NetWriteError:
		return "write error"
	case NetWriteBusy:
		return "write busy"
	case NetWriteTimeout:
		return "write timeout"
	case NetReadError:
		return "read error"
	case NetReadBusy:
		return "read busy"
	case NetReadTimeout:
		return "read timeout"
	case NetReadOverflow:
		return "read overflow"
	case NetFrameError:
		return "frame error"
	case NetBadResponse:
		return "bad response"
	case NetErrorResponse:
		return "error response"
	case NetResetTimeout:
		return "reset timeout"
	case NetBufferTooSmall:
		return "buffer too small"
	case NetUnexpectedResponse:
		return "unexpected response"
	case NetNotConnectedToAP:
		return "not connected to access point"
	case NetNotImplemented:
		return "not implemented"
	case NetConnectionClosed:
		return "connection closed"
	}
	return "unknown"
}

type WifiStatus int32

const (
	WifiNotConnected WifiStatus = iota
	WifiConnected
	WifiNotAvailable
)

// Replies to Network.RequestAccess. AccessAsk means a dialog is pending and
// the reply arrives later.
type AccessReply int32

const (
	AccessAsk AccessReply = iota
	AccessDeny
	AccessAllow
)
