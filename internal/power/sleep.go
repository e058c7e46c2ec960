// Package power reacts to system suspend and resume.
//
// The backlight controller forgets its register state when the machine
// suspends, so the daemon listens for logind's PrepareForSleep signal on
// the system bus and replays the current light state once the machine is
// back up.
package power

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/godbus/dbus/v5"
)

const (
	login1Interface = "org.freedesktop.login1.Manager"
	login1Path      = dbus.ObjectPath("/org/freedesktop/login1")
	sleepMember     = "PrepareForSleep"
)

// Watch subscribes to PrepareForSleep and calls resume after each wakeup
// until ctx is cancelled. It returns once the subscription is in place;
// signal handling runs in a background goroutine.
//
// A missing system bus (containers, odd init systems) is the caller's cue
// to log a warning and carry on without resume handling.
func Watch(ctx context.Context, resume func(), logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "power")

	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return fmt.Errorf("power: connect system bus: %w", err)
	}

	err = conn.AddMatchSignal(
		dbus.WithMatchInterface(login1Interface),
		dbus.WithMatchMember(sleepMember),
		dbus.WithMatchObjectPath(login1Path),
	)
	if err != nil {
		conn.Close()
		return fmt.Errorf("power: subscribe to %s: %w", sleepMember, err)
	}

	signals := make(chan *dbus.Signal, 8)
	conn.Signal(signals)

	go func() {
		defer conn.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case sig, ok := <-signals:
				if !ok {
					log.Warn("system bus connection lost")
					return
				}
				sleeping, ok := sleepingFromSignal(sig)
				if !ok {
					continue
				}
				if sleeping {
					log.Debug("system preparing for sleep")
					continue
				}
				log.Info("system resumed, replaying light state")
				resume()
			}
		}
	}()
	return nil
}

// sleepingFromSignal extracts the PrepareForSleep payload: true right
// before suspend, false right after resume.
func sleepingFromSignal(sig *dbus.Signal) (sleeping, ok bool) {
	if sig == nil || sig.Name != login1Interface+"."+sleepMember || len(sig.Body) != 1 {
		return false, false
	}
	sleeping, ok = sig.Body[0].(bool)
	return sleeping, ok
}
