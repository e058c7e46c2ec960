package keysim

import (
	"errors"
	"testing"

	evdev "github.com/holoplot/go-evdev"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"numpadd/internal/layout"
)

type recordedEvent struct {
	typ   evdev.EvType
	code  evdev.EvCode
	value int32
}

type fakeWriter struct {
	events  []recordedEvent
	failErr error
}

func (w *fakeWriter) WriteOne(ev *evdev.InputEvent) error {
	if w.failErr != nil {
		return w.failErr
	}
	w.events = append(w.events, recordedEvent{typ: ev.Type, code: ev.Code, value: ev.Value})
	return nil
}

func newTestKeyboard() (*Keyboard, *fakeWriter) {
	w := &fakeWriter{}
	return &Keyboard{out: w}, w
}

func TestKeysDownEmitsSync(t *testing.T) {
	kb, w := newTestKeyboard()

	require.NoError(t, kb.KeysDown([]layout.Key{layout.Key(evdev.KEY_5)}))

	require.Len(t, w.events, 2)
	assert.Equal(t, recordedEvent{evdev.EV_KEY, evdev.KEY_5, 1}, w.events[0])
	assert.Equal(t, recordedEvent{evdev.EV_SYN, evdev.SYN_REPORT, 0}, w.events[1])
}

func TestKeysUpEmitsSync(t *testing.T) {
	kb, w := newTestKeyboard()

	require.NoError(t, kb.KeysUp([]layout.Key{layout.Key(evdev.KEY_5)}))

	require.Len(t, w.events, 2)
	assert.Equal(t, recordedEvent{evdev.EV_KEY, evdev.KEY_5, 0}, w.events[0])
	assert.Equal(t, recordedEvent{evdev.EV_SYN, evdev.SYN_REPORT, 0}, w.events[1])
}

func TestKeysPressOrdering(t *testing.T) {
	kb, w := newTestKeyboard()

	require.NoError(t, kb.KeysPress([]layout.Key{layout.Key(evdev.KEY_7)}))

	// Down, sync, up, sync: a press is a strict down-then-up pair.
	require.Len(t, w.events, 4)
	assert.Equal(t, recordedEvent{evdev.EV_KEY, evdev.KEY_7, 1}, w.events[0])
	assert.Equal(t, recordedEvent{evdev.EV_SYN, evdev.SYN_REPORT, 0}, w.events[1])
	assert.Equal(t, recordedEvent{evdev.EV_KEY, evdev.KEY_7, 0}, w.events[2])
	assert.Equal(t, recordedEvent{evdev.EV_SYN, evdev.SYN_REPORT, 0}, w.events[3])
}

func TestBatchSharesOneSync(t *testing.T) {
	kb, w := newTestKeyboard()

	keys := []layout.Key{layout.Key(evdev.KEY_1), layout.Key(evdev.KEY_2)}
	require.NoError(t, kb.KeysDown(keys))

	require.Len(t, w.events, 3)
	assert.Equal(t, evdev.EvType(evdev.EV_KEY), w.events[0].typ)
	assert.Equal(t, evdev.EvType(evdev.EV_KEY), w.events[1].typ)
	assert.Equal(t, evdev.EvType(evdev.EV_SYN), w.events[2].typ)
}

func TestWriteErrorPropagates(t *testing.T) {
	w := &fakeWriter{failErr: errors.New("device gone")}
	kb := &Keyboard{out: w}

	err := kb.KeysPress([]layout.Key{layout.Key(evdev.KEY_3)})
	require.Error(t, err)
	assert.ErrorIs(t, err, w.failErr)
}

func TestCloseWithoutDevice(t *testing.T) {
	kb, _ := newTestKeyboard()
	assert.NoError(t, kb.Close())
}
