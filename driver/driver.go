package driver

import (
	"time"

	"github.com/openbench/go-fx3kit/ezusb"
	"github.com/openbench/go-fx3kit/firmware"
)

// Fixed renumeration timing. The settle delay is the empirical minimum for
// the old USB identity to be gone from the bus; the poll interval paces the
// re-open attempts. Only the overall timeout is configurable, since device
// classes renumerate at different speeds.
const (
	renumSettleDelay  = 300 * time.Millisecond
	renumPollInterval = 100 * time.Millisecond

	// DefaultRenumTimeout bounds the renumeration wait.
	DefaultRenumTimeout = 3 * time.Second
)

// Identity of a device that already runs the runtime firmware. A scan probes
// these strings to decide whether an upload is needed.
const (
	firmwareManufacturer = "sigrok"
	firmwareProduct      = "fx3lafw"
)

// usbInterface is the interface claimed on open.
const usbInterface = 0

// Config holds the driver configuration.
type Config struct {
	// Profiles is the device profile table; first match wins
	Profiles []Profile

	// Logger is used for logging operations (optional)
	Logger Logger

	// Clock provides time and sleeping; replaced by tests
	Clock Clock

	// RenumTimeout bounds the wait for a device to reappear after a
	// firmware upload
	RenumTimeout time.Duration

	// FirmwareManufacturer and FirmwareProduct are the string-descriptor
	// identity a device presents once the runtime firmware is running
	FirmwareManufacturer string
	FirmwareProduct      string

	// InstallProgress, if set, receives upload progress during Scan
	InstallProgress ezusb.ProgressFunc

	// Interface is the interface number claimed on open
	Interface int
}

func defaultConfig() Config {
	return Config{
		Profiles:             Profiles,
		Clock:                systemClock{},
		RenumTimeout:         DefaultRenumTimeout,
		FirmwareManufacturer: firmwareManufacturer,
		FirmwareProduct:      firmwareProduct,
		Interface:            usbInterface,
	}
}

// Option is a functional option for configuring the Driver.
type Option func(*Config)

// WithProfiles replaces the default device profile table.
func WithProfiles(profiles []Profile) Option {
	return func(c *Config) {
		c.Profiles = profiles
	}
}

// WithLogger sets a logger for driver operations.
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithClock replaces the system clock. Intended for tests.
func WithClock(clock Clock) Option {
	return func(c *Config) {
		if clock != nil {
			c.Clock = clock
		}
	}
}

// WithRenumTimeout sets the bound on the renumeration wait.
func WithRenumTimeout(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.RenumTimeout = d
		}
	}
}

// WithFirmwareIdentity overrides the post-upload USB identity probe.
func WithFirmwareIdentity(manufacturer, product string) Option {
	return func(c *Config) {
		c.FirmwareManufacturer = manufacturer
		c.FirmwareProduct = product
	}
}

// WithInstallProgress sets a callback receiving firmware upload progress.
func WithInstallProgress(fn ezusb.ProgressFunc) Option {
	return func(c *Config) {
		c.InstallProgress = fn
	}
}

// Logger is an optional logging interface accepted by the driver.
// It allows integration with any logging framework.
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}

// Driver discovers fx3kit-compatible devices, installs runtime firmware on
// blank ones and manages the open/claim/close lifecycle.
//
// The driver provides no internal locking: callers must serialize
// scan/open/close per logical device.
type Driver struct {
	bus    Bus
	loader firmware.Loader
	config Config
}

// New creates a Driver over the given bus and firmware loader.
//
// Example:
//
//	bus := usb.NewBus()
//	loader := firmware.NewDirLoader("/usr/share/fx3kit/firmware")
//	drv := driver.New(bus, loader, driver.WithLogger(logger))
func New(bus Bus, loader firmware.Loader, opts ...Option) *Driver {
	if bus == nil {
		panic("bus cannot be nil")
	}
	if loader == nil {
		panic("loader cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Driver{
		bus:    bus,
		loader: loader,
		config: cfg,
	}
}

// List returns driver-scoped enumerations. Device-scoped keys such as
// KeySamplerate need a bound device and return ErrNotSupported here.
func (dr *Driver) List(key Key) (interface{}, error) {
	switch key {
	case KeyTriggerMatch:
		return TriggerMatches(), nil
	default:
		return nil, ErrNotSupported
	}
}

func (dr *Driver) logDebug(msg string, keysAndValues ...interface{}) {
	if dr.config.Logger != nil {
		dr.config.Logger.Debug(msg, keysAndValues...)
	}
}

func (dr *Driver) logInfo(msg string, keysAndValues ...interface{}) {
	if dr.config.Logger != nil {
		dr.config.Logger.Info(msg, keysAndValues...)
	}
}

func (dr *Driver) logError(msg string, keysAndValues ...interface{}) {
	if dr.config.Logger != nil {
		dr.config.Logger.Error(msg, keysAndValues...)
	}
}
