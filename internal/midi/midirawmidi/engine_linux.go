//go:build linux

package midirawmidi

import (
	"errors"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/lhpt2/portmidi/internal/midi/midistream"
	"github.com/lhpt2/portmidi/sdk/contracts"
)

const devDir = "/dev/snd"

type rawEngine struct {
	logger contracts.Logger

	mu      sync.Mutex
	paths   []string
	opened  map[contracts.DeviceID]bool
	start   time.Time
	hostErr string
}

// New returns the rawmidi-backed engine.
func New(opts *contracts.ClientOptions) contracts.Engine {
	return &rawEngine{logger: opts.Logger, opened: map[contracts.DeviceID]bool{}}
}

type rawStream struct {
	id    contracts.DeviceID
	fd    int
	input bool

	// Input side: raw bytes drained from the descriptor on demand.
	parser *midistream.Parser
	queue  *midistream.Queue

	// Output side: sysex state carried across write batches.
	inSysex bool
}

func (e *rawEngine) Name() string { return Name }

func (e *rawEngine) Initialize() contracts.Status {
	entries, err := os.ReadDir(devDir)
	if err != nil {
		// No sound subsystem; initialize with zero devices.
		e.logger.Warn("rawmidi: cannot read device directory",
			e.logger.Field().String("dir", devDir),
			e.logger.Field().Error("error", err))
		entries = nil
	}

	var paths []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.Contains(name, "dmmidi") {
			continue
		}
		if strings.Contains(name, "midi") {
			paths = append(paths, devDir+"/"+name)
		}
	}
	sort.Strings(paths)

	e.mu.Lock()
	e.paths = paths
	e.start = time.Now()
	e.mu.Unlock()

	e.logger.Info("rawmidi engine initialized",
		e.logger.Field().Int("devices", len(paths)))
	return contracts.StatusNoError
}

func (e *rawEngine) Terminate() contracts.Status {
	e.mu.Lock()
	e.paths = nil
	e.opened = map[contracts.DeviceID]bool{}
	e.mu.Unlock()
	return contracts.StatusNoError
}

func (e *rawEngine) CountDevices() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.paths)
}

func (e *rawEngine) DefaultInputDeviceID() contracts.DeviceID {
	return e.firstDevice()
}

func (e *rawEngine) DefaultOutputDeviceID() contracts.DeviceID {
	return e.firstDevice()
}

func (e *rawEngine) firstDevice() contracts.DeviceID {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.paths) == 0 {
		return contracts.NoDevice
	}
	return 0
}

func (e *rawEngine) DeviceInfo(id contracts.DeviceID) *contracts.DeviceInfo {
	e.mu.Lock()
	defer e.mu.Unlock()
	if id < 0 || int(id) >= len(e.paths) {
		return nil
	}
	// Rawmidi nodes are bidirectional; direction is chosen at open time.
	return &contracts.DeviceInfo{
		ID:        id,
		Interface: "ALSA",
		Name:      e.paths[id],
		IsInput:   true,
		IsOutput:  true,
		IsOpened:  e.opened[id],
	}
}

func (e *rawEngine) CreateVirtualOutput(string) (contracts.DeviceID, contracts.Status) {
	return contracts.NoDevice, e.hostError("virtual outputs are not supported by the rawmidi engine")
}

func (e *rawEngine) DeleteVirtualDevice(contracts.DeviceID) contracts.Status {
	return e.hostError("virtual outputs are not supported by the rawmidi engine")
}

func (e *rawEngine) OpenInput(id contracts.DeviceID, bufferSize int) (contracts.StreamHandle, contracts.Status) {
	return e.open(id, bufferSize, true)
}

func (e *rawEngine) OpenOutput(id contracts.DeviceID, bufferSize, _ int) (contracts.StreamHandle, contracts.Status) {
	return e.open(id, bufferSize, false)
}

func (e *rawEngine) open(id contracts.DeviceID, bufferSize int, input bool) (contracts.StreamHandle, contracts.Status) {
	e.mu.Lock()
	if id < 0 || int(id) >= len(e.paths) {
		e.mu.Unlock()
		return nil, contracts.StatusInvalidDeviceID
	}
	if e.opened[id] {
		e.mu.Unlock()
		return nil, contracts.StatusInvalidDeviceID
	}
	path := e.paths[id]
	e.mu.Unlock()

	flags := unix.O_WRONLY | unix.O_NONBLOCK
	if input {
		flags = unix.O_RDONLY | unix.O_NONBLOCK
	}
	fd, err := unix.Open(path, flags, 0)
	if err != nil {
		return nil, e.hostError("open " + path + ": " + err.Error())
	}

	stream := &rawStream{id: id, fd: fd, input: input}
	if input {
		stream.parser = midistream.NewParser()
		stream.queue = midistream.NewQueue(bufferSize)
	}

	e.mu.Lock()
	e.opened[id] = true
	e.mu.Unlock()
	return stream, contracts.StatusNoError
}

// drain moves everything currently readable from the descriptor into the
// stream's queue. The descriptor is non-blocking, so this returns as soon
// as the kernel has nothing more for us.
func (e *rawEngine) drain(s *rawStream) contracts.Status {
	ts := e.now()
	var tmp [64]byte
	for {
		n, err := unix.Read(s.fd, tmp[:])
		if err != nil {
			if errors.Is(err, unix.EAGAIN) {
				return contracts.StatusNoError
			}
			return e.hostError("read: " + err.Error())
		}
		if n == 0 {
			return contracts.StatusNoError
		}
		for _, ev := range s.parser.Feed(ts, tmp[:n]) {
			if s.queue.Push(ev) {
				s.parser.Reset()
			}
		}
	}
}

func (e *rawEngine) now() contracts.Timestamp {
	e.mu.Lock()
	start := e.start
	e.mu.Unlock()
	return contracts.Timestamp(time.Since(start).Milliseconds())
}

func (e *rawEngine) Read(stream contracts.StreamHandle, buf []contracts.PackedEvent) int {
	s, ok := stream.(*rawStream)
	if !ok || !s.input {
		return int(contracts.StatusBadPointer)
	}
	if st := e.drain(s); st != contracts.StatusNoError {
		return int(st)
	}
	return s.queue.Read(buf)
}

func (e *rawEngine) Write(stream contracts.StreamHandle, events []contracts.PackedEvent) contracts.Status {
	s, ok := stream.(*rawStream)
	if !ok || s.input {
		return contracts.StatusBadPointer
	}
	var data []byte
	for _, ev := range events {
		data, s.inSysex = midistream.AppendWire(data, s.inSysex, ev.Word)
	}
	return e.writeAll(s, data)
}

// writePollTimeout bounds each wait for the descriptor to become
// writable again, in milliseconds.
const writePollTimeout = 100

func (e *rawEngine) writeAll(s *rawStream, data []byte) contracts.Status {
	for len(data) > 0 {
		n, err := unix.Write(s.fd, data)
		if err != nil {
			if errors.Is(err, unix.EAGAIN) {
				fds := []unix.PollFd{{Fd: int32(s.fd), Events: unix.POLLOUT}}
				if _, perr := unix.Poll(fds, writePollTimeout); perr != nil && !errors.Is(perr, unix.EINTR) {
					return e.hostError("poll: " + perr.Error())
				}
				continue
			}
			return e.hostError("write: " + err.Error())
		}
		data = data[n:]
	}
	return contracts.StatusNoError
}

func (e *rawEngine) WriteShort(stream contracts.StreamHandle, _ contracts.Timestamp, word uint32) contracts.Status {
	s, ok := stream.(*rawStream)
	if !ok || s.input {
		return contracts.StatusBadPointer
	}
	data, inSysex := midistream.AppendWire(nil, s.inSysex, word)
	s.inSysex = inSysex
	return e.writeAll(s, data)
}

func (e *rawEngine) Abort(stream contracts.StreamHandle) contracts.Status {
	s, ok := stream.(*rawStream)
	if !ok || s.input {
		return contracts.StatusBadPointer
	}
	s.inSysex = false
	return contracts.StatusNoError
}

func (e *rawEngine) Close(stream contracts.StreamHandle) contracts.Status {
	s, ok := stream.(*rawStream)
	if !ok {
		return contracts.StatusBadPointer
	}
	err := unix.Close(s.fd)
	e.mu.Lock()
	delete(e.opened, s.id)
	e.mu.Unlock()
	if err != nil {
		return e.hostError("close: " + err.Error())
	}
	return contracts.StatusNoError
}

func (e *rawEngine) Poll(stream contracts.StreamHandle) contracts.Status {
	s, ok := stream.(*rawStream)
	if !ok || !s.input {
		return contracts.StatusBadPointer
	}
	if st := e.drain(s); st != contracts.StatusNoError {
		return st
	}
	return s.queue.Poll()
}

func (e *rawEngine) HasHostError(contracts.StreamHandle) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hostErr != ""
}

func (e *rawEngine) ErrorText(status contracts.Status) string {
	return status.String()
}

func (e *rawEngine) HostErrorText() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	msg := e.hostErr
	e.hostErr = ""
	return msg
}

func (e *rawEngine) hostError(msg string) contracts.Status {
	e.logger.Warn("rawmidi host error", e.logger.Field().String("detail", msg))
	e.mu.Lock()
	e.hostErr = msg
	e.mu.Unlock()
	return contracts.StatusHostError
}
