package midi

import (
	"fmt"
	"sync"

	"github.com/lhpt2/portmidi/sdk/contracts"
)

// Registry owns one driver session. It enumerates devices, opens ports
// against them, tracks the virtual devices it created and guarantees
// their deletion when the registry itself is closed.
//
// Devices attached after the registry is created are not picked up; the
// device count is fixed for the lifetime of the session. A Registry must
// outlive every port it issued.
type Registry struct {
	engine      contracts.Engine
	logger      contracts.Logger
	deviceCount int

	// virtualDevs holds the ids of virtual devices created through this
	// registry. Creation may happen from multiple goroutines, so the slice
	// is guarded; entries are only removed during Close.
	mu          sync.Mutex
	virtualDevs []contracts.DeviceID

	closeOnce sync.Once
}

// NewRegistry initializes the underlying engine and returns a registry
// bound to it. It fails with contracts.ErrInvalid when the session cannot
// be initialized or the device count cannot be obtained; no partial
// registry is returned.
func NewRegistry(opts ...contracts.Option) (*Registry, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}

	engine, err := newEngine(&options)
	if err != nil {
		return nil, err
	}

	if st := engine.Initialize(); st.Err() != nil {
		return nil, fmt.Errorf("%w: %v", contracts.ErrInvalid, st.Err())
	}

	count := engine.CountDevices()
	if count < 0 {
		if st := engine.Terminate(); st.Err() != nil {
			options.Logger.Error("could not terminate after failed enumeration",
				options.Logger.Field().Error("error", st.Err()))
		}
		return nil, contracts.ErrInvalid
	}

	options.Logger.Info("midi session initialized",
		options.Logger.Field().String("engine", engine.Name()),
		options.Logger.Field().Int("devices", count))

	return &Registry{
		engine:      engine,
		logger:      options.Logger,
		deviceCount: count,
	}, nil
}

// DeviceCount returns the number of devices. The count does not change
// during the lifetime of the session.
func (r *Registry) DeviceCount() int {
	return r.deviceCount
}

// VirtualDeviceCount returns the number of virtual devices created through
// this registry and not yet torn down.
func (r *Registry) VirtualDeviceCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.virtualDevs)
}

// DefaultInputDeviceID returns the platform's default input device id, or
// contracts.ErrNoDefaultDevice when none is configured.
func (r *Registry) DefaultInputDeviceID() (contracts.DeviceID, error) {
	if id := r.engine.DefaultInputDeviceID(); id != contracts.NoDevice {
		return id, nil
	}
	return contracts.NoDevice, contracts.ErrNoDefaultDevice
}

// DefaultOutputDeviceID returns the platform's default output device id,
// or contracts.ErrNoDefaultDevice when none is configured.
func (r *Registry) DefaultOutputDeviceID() (contracts.DeviceID, error) {
	if id := r.engine.DefaultOutputDeviceID(); id != contracts.NoDevice {
		return id, nil
	}
	return contracts.NoDevice, contracts.ErrNoDefaultDevice
}

// Device returns the descriptor for the given id. An out-of-range or
// otherwise invalid id surfaces the engine's error.
func (r *Registry) Device(id contracts.DeviceID) (contracts.DeviceInfo, error) {
	info := r.engine.DeviceInfo(id)
	if info == nil {
		return contracts.DeviceInfo{}, fmt.Errorf("%w: %d", contracts.ErrInvalidDeviceID, id)
	}
	return *info, nil
}

// Devices returns the descriptors of all devices in ascending id order.
// It aborts at the first failure; no partial result is returned.
func (r *Registry) Devices() ([]contracts.DeviceInfo, error) {
	devices := make([]contracts.DeviceInfo, 0, r.deviceCount)
	for id := 0; id < r.deviceCount; id++ {
		info, err := r.Device(contracts.DeviceID(id))
		if err != nil {
			return nil, err
		}
		devices = append(devices, info)
	}
	return devices, nil
}

// CreateVirtualOutput asks the engine to register a new virtual output
// device under the given name and returns its descriptor. The id is
// tracked by the registry and the device deleted again during Close.
//
// The device name is caller-controlled, so a name collision is a contract
// violation and panics rather than returning an error.
func (r *Registry) CreateVirtualOutput(name string) (contracts.DeviceInfo, error) {
	id, st := r.engine.CreateVirtualOutput(name)
	switch st {
	case contracts.StatusNoError, contracts.StatusGotData:
		// Engine returned a fresh id.
	case contracts.StatusInvalidDeviceID:
		panic(fmt.Sprintf("midi: virtual device name %q already exists or is invalid", name))
	default:
		return contracts.DeviceInfo{}, st.Err()
	}

	r.mu.Lock()
	r.virtualDevs = append(r.virtualDevs, id)
	r.mu.Unlock()

	r.logger.Info("virtual output created",
		r.logger.Field().String("name", name),
		r.logger.Field().Int("id", int(id)))

	return r.Device(id)
}

// InputPort opens an input stream on the given device. The direction flag
// is validated before any engine resource is allocated; a device without
// input support fails with contracts.ErrNotAnInputDevice.
func (r *Registry) InputPort(device contracts.DeviceInfo, bufferSize int) (*InputPort, error) {
	if !device.IsInput {
		return nil, contracts.ErrNotAnInputDevice
	}
	return newInputPort(r, device, bufferSize)
}

// DefaultInputPort opens an input stream on the platform's default input
// device.
func (r *Registry) DefaultInputPort(bufferSize int) (*InputPort, error) {
	id, err := r.DefaultInputDeviceID()
	if err != nil {
		return nil, err
	}
	device, err := r.Device(id)
	if err != nil {
		return nil, err
	}
	return r.InputPort(device, bufferSize)
}

// OutputPort opens an output stream on the given device with zero latency,
// i.e. immediate, untimed delivery. A device without output support fails
// with contracts.ErrNotAnOutputDevice.
func (r *Registry) OutputPort(device contracts.DeviceInfo, bufferSize int) (*OutputPort, error) {
	return r.OutputPortWithLatency(device, bufferSize, 0)
}

// OutputPortWithLatency opens an output stream with the given scheduling
// latency for timestamped messages.
func (r *Registry) OutputPortWithLatency(device contracts.DeviceInfo, bufferSize, latency int) (*OutputPort, error) {
	if !device.IsOutput {
		return nil, contracts.ErrNotAnOutputDevice
	}
	return newOutputPort(r, device, bufferSize, latency)
}

// DefaultOutputPort opens an output stream on the platform's default
// output device with zero latency.
func (r *Registry) DefaultOutputPort(bufferSize int) (*OutputPort, error) {
	id, err := r.DefaultOutputDeviceID()
	if err != nil {
		return nil, err
	}
	device, err := r.Device(id)
	if err != nil {
		return nil, err
	}
	return r.OutputPort(device, bufferSize)
}

// HostErrorText retrieves and clears the engine's pending host error
// message.
func (r *Registry) HostErrorText() string {
	return r.engine.HostErrorText()
}

// Close tears the session down: every virtual device created through this
// registry is deleted from the engine, then the session is terminated.
// Deletion and termination failures are logged, never propagated, so that
// Close is safe to run during resource release. The teardown runs exactly
// once; later calls are no-ops.
func (r *Registry) Close() error {
	r.closeOnce.Do(func() {
		r.mu.Lock()
		for _, id := range r.virtualDevs {
			if st := r.engine.DeleteVirtualDevice(id); st.Err() != nil {
				r.logger.Error("could not delete virtual device",
					r.logger.Field().Int("id", int(id)),
					r.logger.Field().Error("error", st.Err()))
			}
		}
		r.virtualDevs = nil
		r.mu.Unlock()

		if st := r.engine.Terminate(); st.Err() != nil {
			r.logger.Error("could not terminate midi session",
				r.logger.Field().Error("error", st.Err()))
		} else {
			r.logger.Info("midi session terminated")
		}
	})
	return nil
}
