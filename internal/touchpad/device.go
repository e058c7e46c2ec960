package touchpad

import (
	"fmt"
	"log/slog"
	"sync"

	evdev "github.com/holoplot/go-evdev"
)

// Device wraps the evdev handle for the touchpad. It survives the handle
// being torn down and reopened (suspend, i2c-hid reset) so the rest of the
// daemon can keep a single reference for the process lifetime.
type Device struct {
	path string
	log  *slog.Logger

	mu  sync.Mutex
	dev *evdev.InputDevice
}

// Open opens the touchpad event node.
func Open(path string, logger *slog.Logger) (*Device, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dev, err := evdev.Open(path)
	if err != nil {
		return nil, fmt.Errorf("touchpad: open %s: %w", path, err)
	}
	return &Device{
		path: path,
		log:  logger.With("component", "touchpad"),
		dev:  dev,
	}, nil
}

// Path returns the event node path the device was opened from.
func (d *Device) Path() string {
	return d.path
}

func (d *Device) handle() *evdev.InputDevice {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dev
}

// ReadOne blocks until the next event arrives. Closing or reopening the
// device unblocks it with an error.
func (d *Device) ReadOne() (*evdev.InputEvent, error) {
	return d.handle().ReadOne()
}

// Grab takes exclusive ownership of the event stream: while grabbed the
// touchpad no longer drives pointer motion.
func (d *Device) Grab() error {
	return d.handle().Grab()
}

// Ungrab releases exclusive ownership.
func (d *Device) Ungrab() error {
	return d.handle().Ungrab()
}

// Reopen replaces the underlying handle after the device node has come
// back. Any grab held on the old handle is gone with it.
func (d *Device) Reopen() error {
	dev, err := evdev.Open(d.path)
	if err != nil {
		return fmt.Errorf("touchpad: reopen %s: %w", d.path, err)
	}
	d.mu.Lock()
	old := d.dev
	d.dev = dev
	d.mu.Unlock()
	if err := old.Close(); err != nil {
		d.log.Debug("closing stale handle", "error", err)
	}
	return nil
}

// Close closes the current handle, unblocking any reader.
func (d *Device) Close() error {
	return d.handle().Close()
}
