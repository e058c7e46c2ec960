// Package keysim exposes a uinput virtual keyboard carrying exactly the
// numpad's symbol set. Key batches are written as a run of key events
// followed by a single synchronization report.
package keysim

import (
	"fmt"

	evdev "github.com/holoplot/go-evdev"

	"numpadd/internal/layout"
)

const deviceName = "NumberPad"

const (
	keyUp   int32 = 0
	keyDown int32 = 1
)

// writer is the part of *evdev.InputDevice the keyboard needs; tests
// substitute a recorder.
type writer interface {
	WriteOne(ev *evdev.InputEvent) error
}

// Keyboard is the virtual key emitter.
type Keyboard struct {
	out    writer
	closer func() error
}

// New creates the virtual device. Creation needs write access to
// /dev/uinput and fails at startup otherwise.
func New(lay *layout.Layout) (*Keyboard, error) {
	codes := make([]evdev.EvCode, 0, len(lay.Keys()))
	for _, k := range lay.Keys() {
		codes = append(codes, k.Code())
	}
	dev, err := evdev.CreateDevice(deviceName, evdev.InputID{
		BusType: 0x06, // BUS_VIRTUAL
		Vendor:  0x0001,
		Product: 0x0001,
		Version: 1,
	}, map[evdev.EvType][]evdev.EvCode{
		evdev.EV_KEY: codes,
	})
	if err != nil {
		return nil, fmt.Errorf("keysim: create uinput device: %w", err)
	}
	return &Keyboard{out: dev, closer: dev.Close}, nil
}

// KeysDown emits a key-down for every key, then a sync report.
func (k *Keyboard) KeysDown(keys []layout.Key) error {
	return k.send(keys, keyDown)
}

// KeysUp emits a key-up for every key, then a sync report.
func (k *Keyboard) KeysUp(keys []layout.Key) error {
	return k.send(keys, keyUp)
}

// KeysPress is KeysDown followed by KeysUp, with nothing interleaved.
func (k *Keyboard) KeysPress(keys []layout.Key) error {
	if err := k.KeysDown(keys); err != nil {
		return err
	}
	return k.KeysUp(keys)
}

func (k *Keyboard) send(keys []layout.Key, value int32) error {
	for _, key := range keys {
		ev := &evdev.InputEvent{Type: evdev.EV_KEY, Code: key.Code(), Value: value}
		if err := k.out.WriteOne(ev); err != nil {
			return fmt.Errorf("keysim: write %s: %w", key, err)
		}
	}
	return k.syn()
}

func (k *Keyboard) syn() error {
	ev := &evdev.InputEvent{Type: evdev.EV_SYN, Code: evdev.SYN_REPORT, Value: 0}
	if err := k.out.WriteOne(ev); err != nil {
		return fmt.Errorf("keysim: write syn: %w", err)
	}
	return nil
}

// Close destroys the virtual device.
func (k *Keyboard) Close() error {
	if k.closer == nil {
		return nil
	}
	return k.closer()
}
