package touchpad

import (
	"context"

	evdev "github.com/holoplot/go-evdev"
)

// Handler receives the three event kinds the state machine consumes, in
// arrival order.
type Handler interface {
	OnPosition(x, y int32)
	OnContact(down bool)
	OnTick()
}

// EventSource is the read side of a Device.
type EventSource interface {
	ReadOne() (*evdev.InputEvent, error)
}

// Run dispatches touchpad events to the handler until the context is
// cancelled or the source fails. ReadOne blocks, so cancellation relies on
// the caller closing the source when ctx is done; a read error after
// cancellation is treated as a clean shutdown.
//
// The touchpad reports X and Y as separate absolute-axis events; Run folds
// them into the handler's two-coordinate contract by remembering the other
// axis.
func Run(ctx context.Context, src EventSource, h Handler) error {
	var x, y int32
	for {
		ev, err := src.ReadOne()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		switch ev.Type {
		case evdev.EV_ABS:
			switch ev.Code {
			case evdev.ABS_MT_POSITION_X:
				x = ev.Value
				h.OnPosition(x, y)
			case evdev.ABS_MT_POSITION_Y:
				y = ev.Value
				h.OnPosition(x, y)
			}
		case evdev.EV_KEY:
			if ev.Code == evdev.BTN_TOOL_FINGER {
				h.OnContact(ev.Value != 0)
			}
		case evdev.EV_MSC:
			if ev.Code == evdev.MSC_TIMESTAMP {
				h.OnTick()
			}
		}
	}
}
