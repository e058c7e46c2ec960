// numpadd emulates the numeric keypad painted on the touchpad of certain
// laptops. It classifies raw touch input into taps, holds, drags and a
// brightness gesture, types through a virtual keyboard, and drives the
// numpad backlight over I2C.
//
// There is no CLI and no configuration file: the layout geometry and
// thresholds are properties of the hardware. Logging is tuned through the
// environment, see internal/logging.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"numpadd/internal/backlight"
	"numpadd/internal/keysim"
	"numpadd/internal/layout"
	"numpadd/internal/logging"
	"numpadd/internal/numpad"
	"numpadd/internal/power"
	"numpadd/internal/touchpad"
)

func main() {
	logger := logging.New()
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("numpadd exiting", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	id, err := touchpad.Discover()
	if err != nil {
		return err
	}
	logger.Info("touchpad found", "event", id.EventPath(), "i2c_bus", id.I2CBus)

	light, err := backlight.Open(id.I2CBus, logger)
	if err != nil {
		return err
	}
	defer light.Close()

	lay := layout.Default()
	keyboard, err := keysim.New(lay)
	if err != nil {
		return err
	}
	defer keyboard.Close()

	dev, err := touchpad.Open(id.EventPath(), logger)
	if err != nil {
		return err
	}
	defer dev.Close()

	// Match the hardware's power-on state: backlight dark, level preset
	// to maximum so the first toggle lights up fully.
	if err := light.TurnOff(); err != nil {
		logger.Warn("initial backlight off failed", "error", err)
	}
	if err := light.SetBrightness(backlight.MaxBrightness); err != nil {
		logger.Warn("initial brightness preset failed", "error", err)
	}

	machine := numpad.New(lay, keyboard, light, dev, logger)

	if err := power.Watch(ctx, machine.ReapplyLight, logger); err != nil {
		logger.Warn("suspend handling unavailable", "error", err)
	}

	// The event loop blocks in read; closing the device is what unblocks
	// it on shutdown.
	go func() {
		<-ctx.Done()
		dev.Close()
	}()

	logger.Info("numpadd running")
	for {
		err := touchpad.Run(ctx, dev, machine)
		if ctx.Err() != nil {
			logger.Info("shutting down")
			return nil
		}

		// The i2c-hid touchpad drops its node across suspend and
		// firmware resets. Wait for it to come back and pick up where
		// we left off instead of dying.
		logger.Warn("touchpad stream failed, waiting for device", "error", err)
		if err := touchpad.WaitForNode(ctx, id.EventPath()); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if err := dev.Reopen(); err != nil {
			return err
		}
		machine.Reset()
		logger.Info("touchpad reopened")
	}
}
