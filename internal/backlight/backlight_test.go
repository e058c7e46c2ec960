package backlight

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBus records every frame written to it and can be made to fail the
// next n writes.
type fakeBus struct {
	writes   [][]byte
	failNext int
	failErr  error
	short    bool
	closed   bool
}

func (b *fakeBus) WriteBytes(buf []byte) (int, error) {
	if b.failNext > 0 {
		b.failNext--
		return 0, b.failErr
	}
	cp := make([]byte, len(buf))
	copy(cp, buf)
	b.writes = append(b.writes, cp)
	if b.short {
		return len(buf) - 1, nil
	}
	return len(buf), nil
}

func (b *fakeBus) Close() error {
	b.closed = true
	return nil
}

func frameWithArg(arg byte) []byte {
	return []byte{0x05, 0x00, 0x3d, 0x03, 0x06, 0x00, 0x07, 0x00, 0x0d, 0x14, 0x03, arg, 0xad}
}

func TestCommandFrames(t *testing.T) {
	bus := &fakeBus{}
	l := New(bus, nil)

	require.NoError(t, l.TurnOn())
	require.NoError(t, l.TurnOff())
	require.NoError(t, l.SetBrightness(0))
	require.NoError(t, l.SetBrightness(MaxBrightness))

	require.Len(t, bus.writes, 4)
	assert.Equal(t, frameWithArg(0x01), bus.writes[0])
	assert.Equal(t, frameWithArg(0x00), bus.writes[1])
	assert.Equal(t, frameWithArg(0x41), bus.writes[2])
	assert.Equal(t, frameWithArg(0x41+MaxBrightness), bus.writes[3])
}

func TestSetBrightnessOutOfRange(t *testing.T) {
	bus := &fakeBus{}
	l := New(bus, nil)

	err := l.SetBrightness(MaxBrightness + 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBrightnessRange)
	assert.Empty(t, bus.writes, "out-of-range level must not touch the bus")
}

func TestWriteRetriesOnce(t *testing.T) {
	bus := &fakeBus{failNext: 1, failErr: errors.New("nak")}
	l := New(bus, nil)

	require.NoError(t, l.TurnOn())
	require.Len(t, bus.writes, 1)
}

func TestWriteSurfacesRepeatedFailure(t *testing.T) {
	busErr := errors.New("nak")
	bus := &fakeBus{failNext: 2, failErr: busErr}
	l := New(bus, nil)

	err := l.TurnOn()
	require.Error(t, err)
	assert.ErrorIs(t, err, busErr)
	assert.Empty(t, bus.writes)
}

func TestShortWriteIsAnError(t *testing.T) {
	bus := &fakeBus{short: true}
	l := New(bus, nil)

	err := l.TurnOff()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "short write")
}

func TestClose(t *testing.T) {
	bus := &fakeBus{}
	l := New(bus, nil)

	require.NoError(t, l.Close())
	assert.True(t, bus.closed)
}
