package contracts

// DeviceID identifies a MIDI device within one driver session. Ids are
// dense in [0, device count) and stable until the session terminates.
type DeviceID int

// NoDevice is the engine's sentinel for "no such device", returned by the
// default-device queries when the platform has none configured.
const NoDevice DeviceID = -1

// DeviceInfo is an immutable snapshot of one MIDI device. It is produced
// on demand from the registry and carries no ownership; the engine remains
// the source of truth and may be queried again later.
type DeviceInfo struct {
	ID        DeviceID // Device id within the current session.
	Interface string   // Underlying MIDI API, e.g. CoreMIDI or ALSA.
	Name      string   // Device name, e.g. "USB MidiSport 1x1".
	IsInput   bool     // Device supports input.
	IsOutput  bool     // Device supports output.
	IsOpened  bool     // Some stream currently holds the device open.
}
