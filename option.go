package ble

import "time"

// DeviceOption is implemented by the driver to accept configuration options.
type DeviceOption interface {
	SetHandshakeTimeout(time.Duration) error
	SetCommandTimeout(time.Duration) error
	SetInitTimeout(time.Duration) error
	SetProbeInterval(time.Duration) error
	SetPollInterval(time.Duration) error
	SetResetDelay(time.Duration) error
	SetQueueCapacity(int) error
	SetVendor(interface{}) error
	SetErrorHandler(handler func(error)) error
}

// An Option is a configuration function, which configures the device.
type Option func(DeviceOption) error

// OptHandshakeTimeout bounds a single header handshake with the controller.
func OptHandshakeTimeout(d time.Duration) Option {
	return func(opt DeviceOption) error {
		return opt.SetHandshakeTimeout(d)
	}
}

// OptCommandTimeout bounds the wait for a command response.
func OptCommandTimeout(d time.Duration) Option {
	return func(opt DeviceOption) error {
		return opt.SetCommandTimeout(d)
	}
}

// OptInitTimeout bounds the wait for the controller initialized event.
func OptInitTimeout(d time.Duration) Option {
	return func(opt DeviceOption) error {
		return opt.SetInitTimeout(d)
	}
}

// OptProbeInterval sets the delay between two header probes.
func OptProbeInterval(d time.Duration) Option {
	return func(opt DeviceOption) error {
		return opt.SetProbeInterval(d)
	}
}

// OptPollInterval sets the idle delay of the transport loop.
func OptPollInterval(d time.Duration) Option {
	return func(opt DeviceOption) error {
		return opt.SetPollInterval(d)
	}
}

// OptResetDelay sets how long the reset line is held low.
func OptResetDelay(d time.Duration) Option {
	return func(opt DeviceOption) error {
		return opt.SetResetDelay(d)
	}
}

// OptQueueCapacity sets the capacity of the request and response queues.
func OptQueueCapacity(n int) Option {
	return func(opt DeviceOption) error {
		return opt.SetQueueCapacity(n)
	}
}

// OptVendor selects the vendor capability set used to decode events.
func OptVendor(v interface{}) Option {
	return func(opt DeviceOption) error {
		return opt.SetVendor(v)
	}
}

// OptErrorHandler sets error handler
func OptErrorHandler(handler func(error)) Option {
	return func(opt DeviceOption) error {
		return opt.SetErrorHandler(handler)
	}
}
