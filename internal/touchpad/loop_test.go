package touchpad

import (
	"context"
	"errors"
	"io"
	"testing"

	evdev "github.com/holoplot/go-evdev"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedSource struct {
	events []*evdev.InputEvent
	err    error
}

func (s *scriptedSource) ReadOne() (*evdev.InputEvent, error) {
	if len(s.events) == 0 {
		if s.err != nil {
			return nil, s.err
		}
		return nil, io.EOF
	}
	ev := s.events[0]
	s.events = s.events[1:]
	return ev, nil
}

type recordingHandler struct {
	calls []string
	xs    []int32
	ys    []int32
}

func (h *recordingHandler) OnPosition(x, y int32) {
	h.calls = append(h.calls, "position")
	h.xs = append(h.xs, x)
	h.ys = append(h.ys, y)
}

func (h *recordingHandler) OnContact(down bool) {
	if down {
		h.calls = append(h.calls, "down")
	} else {
		h.calls = append(h.calls, "up")
	}
}

func (h *recordingHandler) OnTick() {
	h.calls = append(h.calls, "tick")
}

func ev(t evdev.EvType, c evdev.EvCode, v int32) *evdev.InputEvent {
	return &evdev.InputEvent{Type: t, Code: c, Value: v}
}

func TestRunDispatchesInArrivalOrder(t *testing.T) {
	src := &scriptedSource{events: []*evdev.InputEvent{
		ev(evdev.EV_ABS, evdev.ABS_MT_POSITION_X, 500),
		ev(evdev.EV_ABS, evdev.ABS_MT_POSITION_Y, 400),
		ev(evdev.EV_KEY, evdev.BTN_TOOL_FINGER, 1),
		ev(evdev.EV_MSC, evdev.MSC_TIMESTAMP, 7000),
		ev(evdev.EV_KEY, evdev.BTN_TOOL_FINGER, 0),
	}}
	h := &recordingHandler{}

	err := Run(context.Background(), src, h)
	require.Error(t, err) // scripted EOF after the last event

	assert.Equal(t, []string{"position", "position", "down", "tick", "up"}, h.calls)
}

func TestRunFoldsAxesIntoPositions(t *testing.T) {
	src := &scriptedSource{events: []*evdev.InputEvent{
		ev(evdev.EV_ABS, evdev.ABS_MT_POSITION_X, 100),
		ev(evdev.EV_ABS, evdev.ABS_MT_POSITION_Y, 200),
		ev(evdev.EV_ABS, evdev.ABS_MT_POSITION_X, 150),
	}}
	h := &recordingHandler{}

	_ = Run(context.Background(), src, h)

	require.Len(t, h.xs, 3)
	assert.Equal(t, []int32{100, 100, 150}, h.xs)
	assert.Equal(t, []int32{0, 200, 200}, h.ys)
}

func TestRunIgnoresUnrelatedEvents(t *testing.T) {
	src := &scriptedSource{events: []*evdev.InputEvent{
		ev(evdev.EV_ABS, evdev.ABS_MT_SLOT, 1),
		ev(evdev.EV_KEY, evdev.BTN_TOUCH, 1),
		ev(evdev.EV_SYN, evdev.SYN_REPORT, 0),
	}}
	h := &recordingHandler{}

	_ = Run(context.Background(), src, h)
	assert.Empty(t, h.calls)
}

func TestRunErrorAfterCancelIsCleanShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := &scriptedSource{err: errors.New("device closed")}

	err := Run(ctx, src, &recordingHandler{})
	assert.NoError(t, err)
}

func TestRunSurfacesReadErrors(t *testing.T) {
	readErr := errors.New("device reset")
	src := &scriptedSource{err: readErr}

	err := Run(context.Background(), src, &recordingHandler{})
	assert.ErrorIs(t, err, readErr)
}
