package backlight

import (
	"fmt"
	"log/slog"
	"sync"
)

// Bus is the write side of an I2C connection to the controller. The real
// implementation is github.com/d2r2/go-i2c; tests substitute a recorder.
type Bus interface {
	WriteBytes(buf []byte) (int, error)
	Close() error
}

// Light sends backlight commands over an I2C bus. Safe for concurrent use:
// the event loop and the resume handler may both write.
type Light struct {
	mu  sync.Mutex
	bus Bus
	log *slog.Logger
}

// New wraps an already open bus.
func New(bus Bus, logger *slog.Logger) *Light {
	if logger == nil {
		logger = slog.Default()
	}
	return &Light{bus: bus, log: logger.With("component", "backlight")}
}

// TurnOn lights the numpad at the last brightness level the controller
// was given.
func (l *Light) TurnOn() error {
	return l.write(argOn)
}

// TurnOff darkens the numpad. Brightness commands sent while off are
// accepted but have no visible effect until the next TurnOn.
func (l *Light) TurnOff() error {
	return l.write(argOff)
}

// SetBrightness sets the level, 0 through MaxBrightness. An out-of-range
// level fails with ErrBrightnessRange before any bus traffic.
func (l *Light) SetBrightness(level uint8) error {
	arg, err := brightnessArg(level)
	if err != nil {
		return err
	}
	return l.write(arg)
}

// write sends one command frame. A failed write gets a single retry; the
// controller occasionally NAKs while its own firmware is busy.
func (l *Light) write(arg byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	buf := frame(arg)
	err := l.writeFull(buf)
	if err == nil {
		return nil
	}
	l.log.Debug("bus write failed, retrying", "error", err)
	if err := l.writeFull(buf); err != nil {
		return fmt.Errorf("backlight command %#02x: %w", arg, err)
	}
	return nil
}

func (l *Light) writeFull(buf []byte) error {
	n, err := l.bus.WriteBytes(buf)
	if err != nil {
		return err
	}
	if n != len(buf) {
		return fmt.Errorf("short write: %d of %d bytes", n, len(buf))
	}
	return nil
}

// Close releases the bus.
func (l *Light) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bus.Close()
}
