package contracts

// StreamHandle is an opaque reference to an open native stream. It is
// produced by an Engine's open calls and owned by exactly one port until
// that port is closed; the port passes it back unchanged on every call.
type StreamHandle interface{}

// Engine is the boundary to the native MIDI collaborator. All calls are
// synchronous and expected to return promptly; none of them block.
// Per-session lifecycle (Initialize/Terminate) is driven by the Registry,
// which calls each exactly once.
type Engine interface {
	// Name identifies the engine implementation, e.g. "portmidi".
	Name() string

	// Initialize starts the driver session.
	Initialize() Status
	// Terminate ends the driver session. Calling it twice per session is a
	// contract violation; the Registry prevents it.
	Terminate() Status

	// CountDevices returns the number of devices, fixed for the session.
	// A negative count means enumeration failed.
	CountDevices() int
	// DefaultInputDeviceID returns the platform default input device, or
	// NoDevice if none is configured.
	DefaultInputDeviceID() DeviceID
	// DefaultOutputDeviceID returns the platform default output device, or
	// NoDevice if none is configured.
	DefaultOutputDeviceID() DeviceID
	// DeviceInfo returns the descriptor for id, or nil if id is out of range.
	DeviceInfo(id DeviceID) *DeviceInfo

	// CreateVirtualOutput registers a software-only output device under the
	// given name and returns its id. StatusInvalidDeviceID indicates the
	// name already exists or is invalid.
	CreateVirtualOutput(name string) (DeviceID, Status)
	// DeleteVirtualDevice removes a virtual device created by
	// CreateVirtualOutput.
	DeleteVirtualDevice(id DeviceID) Status

	// OpenInput opens an input stream on the device. bufferSize configures
	// the internal event queue; zero selects an engine-defined default.
	OpenInput(id DeviceID, bufferSize int) (StreamHandle, Status)
	// OpenOutput opens an output stream on the device. latency is the
	// scheduling delay in the engine's time base for timestamped messages;
	// zero means immediate, untimed delivery.
	OpenOutput(id DeviceID, bufferSize, latency int) (StreamHandle, Status)

	// Read fills buf with pending events and returns the number read, or a
	// negative Status value on failure. Zero is a valid empty result.
	Read(stream StreamHandle, buf []PackedEvent) int
	// Write sends a batch of events. The batch may contain short messages
	// or a sysex message split into 4-byte words, with embedded real-time
	// messages.
	Write(stream StreamHandle, events []PackedEvent) Status
	// WriteShort sends a single timestamped short message word.
	WriteShort(stream StreamHandle, when Timestamp, word uint32) Status
	// Abort terminates outgoing transmission immediately; a short message
	// may be left partially transmitted.
	Abort(stream StreamHandle) Status
	// Close releases the stream, flushing pending buffers.
	Close(stream StreamHandle) Status
	// Poll reports StatusGotData if input is pending, StatusNoError if not.
	Poll(stream StreamHandle) Status

	// HasHostError reports whether the stream has a pending host error. The
	// next explicit operation on the stream surfaces and clears it.
	HasHostError(stream StreamHandle) bool
	// ErrorText returns the descriptive text for a status code.
	ErrorText(status Status) string
	// HostErrorText retrieves and clears the pending host error message.
	// Its length is bounded by HostErrorMsgLen.
	HostErrorText() string
}
