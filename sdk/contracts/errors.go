package contracts

import (
	"errors"
	"fmt"
)

// Status mirrors the native engine's result codes. Zero and positive
// values are success variants; negative values are errors. Every call that
// crosses into the engine translates its Status into exactly one of the
// sentinel errors below via Err.
type Status int32

const (
	// StatusNoError indicates success.
	StatusNoError Status = 0
	// StatusGotData is a "no error" result that also indicates data available.
	StatusGotData Status = 1
	// StatusHostError indicates a host- or driver-level error; the detail
	// text is available through Engine.HostErrorText.
	StatusHostError Status = -10000
	// StatusInvalidDeviceID indicates an out-of-range device id, a device
	// of the wrong direction, or a device that is already open.
	StatusInvalidDeviceID Status = -9999
	// StatusInsufficientMemory indicates the engine ran out of memory.
	StatusInsufficientMemory Status = -9998
	// StatusBufferTooSmall indicates the supplied buffer cannot hold the result.
	StatusBufferTooSmall Status = -9997
	// StatusBufferOverflow indicates the input buffer overflowed and was
	// flushed; any partial sysex message in flight was discarded.
	StatusBufferOverflow Status = -9996
	// StatusBadPointer indicates a nil or closed stream handle, or a stream
	// of the wrong direction for the requested operation.
	StatusBadPointer Status = -9995
	// StatusBadData indicates illegal MIDI data, e.g. a missing EOX byte.
	StatusBadData Status = -9994
	// StatusInternalError indicates a defect inside the engine.
	StatusInternalError Status = -9993
	// StatusBufferMaxSize indicates the buffer is already as large as it can be.
	StatusBufferMaxSize Status = -9992
)

// HostErrorMsgLen bounds the length of a host error message.
const HostErrorMsgLen = 256

// Native status errors, one per engine error code.
var (
	ErrHostError          = errors.New("host error")
	ErrInvalidDeviceID    = errors.New("invalid device id")
	ErrInsufficientMemory = errors.New("insufficient memory")
	ErrBufferTooSmall     = errors.New("buffer too small")
	ErrBufferOverflow     = errors.New("buffer overflow")
	ErrBadPointer         = errors.New("bad stream pointer")
	ErrBadData            = errors.New("invalid midi data")
	ErrInternalError      = errors.New("internal engine error")
	ErrBufferMaxSize      = errors.New("buffer already at maximum size")
)

// Binding-level errors, raised before any engine call is made.
var (
	// ErrInvalid indicates the driver session failed to initialize; no
	// partial registry is ever returned.
	ErrInvalid = errors.New("midi session failed to initialize")

	// ErrNoDefaultDevice indicates the platform has no default device
	// configured. This is an expected, recoverable condition.
	ErrNoDefaultDevice = errors.New("no default device available")

	// ErrNotAnInputDevice indicates an input port was requested against a
	// device that does not support input.
	ErrNotAnInputDevice = errors.New("not an input device")

	// ErrNotAnOutputDevice indicates an output port was requested against a
	// device that does not support output.
	ErrNotAnOutputDevice = errors.New("not an output device")
)

// String returns the static descriptive text for the status.
func (s Status) String() string {
	switch s {
	case StatusNoError:
		return "no error"
	case StatusGotData:
		return "no error, data available"
	case StatusHostError:
		return "host error"
	case StatusInvalidDeviceID:
		return "invalid device id"
	case StatusInsufficientMemory:
		return "insufficient memory"
	case StatusBufferTooSmall:
		return "buffer too small"
	case StatusBufferOverflow:
		return "buffer overflow"
	case StatusBadPointer:
		return "bad stream pointer"
	case StatusBadData:
		return "invalid midi data"
	case StatusInternalError:
		return "internal engine error"
	case StatusBufferMaxSize:
		return "buffer already at maximum size"
	default:
		return fmt.Sprintf("unknown status %d", int32(s))
	}
}

// Err maps the status to its sentinel error. Success variants map to nil.
// A status outside the closed enumeration is a programming-contract
// violation and panics rather than being reported as recoverable.
func (s Status) Err() error {
	switch s {
	case StatusNoError, StatusGotData:
		return nil
	case StatusHostError:
		return ErrHostError
	case StatusInvalidDeviceID:
		return ErrInvalidDeviceID
	case StatusInsufficientMemory:
		return ErrInsufficientMemory
	case StatusBufferTooSmall:
		return ErrBufferTooSmall
	case StatusBufferOverflow:
		return ErrBufferOverflow
	case StatusBadPointer:
		return ErrBadPointer
	case StatusBadData:
		return ErrBadData
	case StatusInternalError:
		return ErrInternalError
	case StatusBufferMaxSize:
		return ErrBufferMaxSize
	default:
		panic(fmt.Sprintf("midi: engine returned unknown status %d", int32(s)))
	}
}
