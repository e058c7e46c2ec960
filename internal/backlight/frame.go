// Package backlight drives the numpad backlight controller over I2C.
//
// The controller sits at a fixed slave address on the same I2C bus as the
// touchpad itself. It understands a single 13-byte command frame; the three
// commands (off, on, set brightness) differ only in one payload byte.
// It never answers beyond the bus-level write acknowledgement.
package backlight

import (
	"errors"
	"fmt"
)

// MaxBrightness is the highest level the controller accepts. Levels are
// 0 (dimmest) through MaxBrightness (brightest).
const MaxBrightness uint8 = 7

// SlaveAddr is the controller's fixed I2C slave address.
const SlaveAddr uint8 = 0x38

// Command argument bytes. Brightness commands encode the level as an
// offset from brightnessBase.
const (
	argOff         byte = 0x00
	argOn          byte = 0x01
	brightnessBase byte = 0x41
)

// ErrBrightnessRange reports a brightness level above MaxBrightness. It is
// returned before anything touches the bus.
var ErrBrightnessRange = errors.New("backlight: brightness level out of range")

// frame builds the command frame for the given argument byte.
func frame(arg byte) []byte {
	return []byte{0x05, 0x00, 0x3d, 0x03, 0x06, 0x00, 0x07, 0x00, 0x0d, 0x14, 0x03, arg, 0xad}
}

// brightnessArg validates level and returns its command argument byte.
func brightnessArg(level uint8) (byte, error) {
	if level > MaxBrightness {
		return 0, fmt.Errorf("%w: %d > %d", ErrBrightnessRange, level, MaxBrightness)
	}
	return brightnessBase + level, nil
}
