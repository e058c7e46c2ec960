//go:build linux

package backlight

import (
	"fmt"
	"log/slog"

	i2c "github.com/d2r2/go-i2c"
)

// Open connects to the controller on /dev/i2c-<bus>. The kernel driver for
// the touchpad holds the same bus, so opening can fail transiently right
// after boot; callers treat that as a startup error.
func Open(bus int, logger *slog.Logger) (*Light, error) {
	dev, err := i2c.NewI2C(SlaveAddr, bus)
	if err != nil {
		return nil, fmt.Errorf("backlight: open i2c bus %d: %w", bus, err)
	}
	return New(dev, logger), nil
}
