// Package numpad implements the touch classification state machine at the
// heart of the daemon.
//
// The machine consumes three kinds of events from the touchpad, in arrival
// order: position updates, contact transitions (finger down/up), and the
// hardware's periodic timestamp ticks. From those it decides whether the
// current contact is ordinary pointer motion, a tap, a hold, a drag, or a
// brightness gesture, and drives the device grab, the virtual keyboard and
// the backlight accordingly.
//
// There is no timer: hold and drag thresholds are re-evaluated lazily on
// each tick, so detection latency is bounded by the touchpad's own tick
// cadence.
//
// All entry points must be called from a single goroutine (the event
// loop). The one exception is ReapplyLight, which may be called from
// another goroutine after a suspend/resume cycle.
package numpad

import (
	"log/slog"
	"math"
	"sync"
	"time"

	"numpadd/internal/backlight"
	"numpadd/internal/layout"
)

// KeyEmitter injects key events into the input subsystem on behalf of the
// emulated numpad.
type KeyEmitter interface {
	KeysDown(keys []layout.Key) error
	KeysUp(keys []layout.Key) error
	KeysPress(keys []layout.Key) error
}

// Light controls the numpad backlight.
type Light interface {
	TurnOn() error
	TurnOff() error
	SetBrightness(level uint8) error
}

// Grabber owns exclusive access to the physical touchpad. While grabbed,
// the touchpad stops driving ordinary pointer motion.
type Grabber interface {
	Grab() error
	Ungrab() error
}

// Classification thresholds, in touchpad units and wall-clock time. Both
// boundaries are inclusive: moving exactly minDragDistance is a drag, and
// resting exactly holdDuration is a hold.
const (
	minDragDistance = 30.0
	holdDuration    = 250 * time.Millisecond
)

// phase is the classification of the current contact. Exactly one phase is
// in effect at a time; illegal flag combinations (dragging while holding a
// key) cannot be represented.
type phase int

const (
	// phaseLifted: no contact on the surface.
	phaseLifted phase = iota
	// phaseTouching: contact down, not yet classified.
	phaseTouching
	// phaseHolding: contact dwelled on a key long enough that the key is
	// being emulated as held down.
	phaseHolding
	// phaseDragging: contact reclassified as pointer motion.
	phaseDragging
	// phaseBrightnessDrag: drag that started on the toggle key; vertical
	// motion adjusts the backlight while the touchpad stays grabbed.
	phaseBrightnessDrag
)

func (p phase) String() string {
	switch p {
	case phaseLifted:
		return "lifted"
	case phaseTouching:
		return "touching"
	case phaseHolding:
		return "holding"
	case phaseDragging:
		return "dragging"
	case phaseBrightnessDrag:
		return "brightness-drag"
	default:
		return "unknown"
	}
}

type point struct {
	x, y int32
}

func (p point) distanceTo(q point) float64 {
	dx := float64(p.x) - float64(q.x)
	dy := float64(p.y) - float64(q.y)
	return math.Sqrt(dx*dx + dy*dy)
}

// contact is the snapshot taken at finger-down. Hold and drag decisions
// use the key resolved here; a plain tap resolves again at the lift
// position.
type contact struct {
	pos    point
	at     time.Time
	key    layout.Key
	hasKey bool
}

// Machine is the long-lived session state. One instance is created at
// startup and mutated for the lifetime of the process.
type Machine struct {
	layout *layout.Layout
	keys   KeyEmitter
	light  Light
	pad    Grabber
	log    *slog.Logger
	now    func() time.Time

	pos     point
	last    contact
	phase   phase
	holding layout.Key
	grabbed bool

	// mu guards active and brightness, the only fields read from outside
	// the event loop goroutine (see ReapplyLight).
	mu         sync.Mutex
	active     bool
	brightness uint8
}

// New creates the state machine. Emulation starts toggled off with the
// brightness preset to maximum, matching the hardware's power-on state.
func New(lay *layout.Layout, keys KeyEmitter, light Light, pad Grabber, logger *slog.Logger) *Machine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Machine{
		layout:     lay,
		keys:       keys,
		light:      light,
		pad:        pad,
		log:        logger.With("component", "numpad"),
		now:        time.Now,
		phase:      phaseLifted,
		brightness: backlight.MaxBrightness,
	}
}

// OnPosition records the current contact position. Safe in every phase.
func (m *Machine) OnPosition(x, y int32) {
	m.pos = point{x: x, y: y}
}

// OnContact handles a finger-down or finger-up transition.
func (m *Machine) OnContact(down bool) {
	if down {
		m.touch()
	} else {
		m.lift()
	}
}

func (m *Machine) touch() {
	if m.phase == phaseDragging || m.phase == phaseBrightnessDrag {
		// A second finger landing mid-drag is most likely a gesture
		// (e.g. two-finger scroll); leave the drag alone.
		return
	}
	if m.phase == phaseHolding {
		// Contact down without an intervening lift means the up event
		// was lost; let go of the held key before reclassifying.
		if err := m.keys.KeysUp([]layout.Key{m.holding}); err != nil {
			m.log.Error("key release failed", "key", m.holding, "error", err)
		}
		m.holding = 0
	}
	key, ok := m.layout.Resolve(m.pos.x, m.pos.y)
	m.last = contact{pos: m.pos, at: m.now(), key: key, hasKey: ok}
	m.phase = phaseTouching
	if m.isActive() && ok {
		// The grab must be taken per contact, not once at activation:
		// grabbing eagerly breaks drag detection because the reclassified
		// pointer motion never reaches the compositor.
		m.grab()
	}
}

func (m *Machine) lift() {
	switch m.phase {
	case phaseLifted:
		return
	case phaseBrightnessDrag:
		// The toggle stays active across a brightness gesture, so the
		// grab taken at finger-down is retained; grab() only retries if
		// that initial grab failed.
		m.grab()
	case phaseDragging:
		// Pointer motion ended; the touchpad was already released at
		// drag onset.
	case phaseHolding:
		if err := m.keys.KeysUp([]layout.Key{m.holding}); err != nil {
			m.log.Error("key release failed", "key", m.holding, "error", err)
		}
		m.holding = 0
		m.ungrab()
	case phaseTouching:
		m.tap()
	}
	m.phase = phaseLifted
}

// tap resolves a plain tap: no drag, no hold fired. The key is resolved at
// the lift position, so a tap that slides between regions without crossing
// the drag threshold lands on its final key.
func (m *Machine) tap() {
	defer m.ungrab()

	key, ok := m.layout.Resolve(m.pos.x, m.pos.y)
	if !ok {
		return
	}
	if key == layout.Toggle {
		m.toggle()
		return
	}
	if m.isActive() {
		if err := m.keys.KeysPress([]layout.Key{key}); err != nil {
			m.log.Error("key press failed", "key", key, "error", err)
		}
	}
}

func (m *Machine) toggle() {
	m.mu.Lock()
	m.active = !m.active
	active := m.active
	m.mu.Unlock()

	m.log.Info("numpad toggled", "active", active)
	if active {
		if err := m.light.TurnOn(); err != nil {
			m.log.Error("backlight on failed", "error", err)
		}
	} else {
		if err := m.light.TurnOff(); err != nil {
			m.log.Error("backlight off failed", "error", err)
		}
	}
}

// OnTick re-evaluates the drag and hold thresholds for the contact in
// progress. Ticks arrive from the hardware's own timestamp cadence.
func (m *Machine) OnTick() {
	switch m.phase {
	case phaseLifted, phaseDragging:
		return
	case phaseBrightnessDrag:
		m.adjustBrightness()
		return
	}

	// Touching or holding. Drag detection stays live in both so a finger
	// that starts moving after the hold fired still turns into a drag.
	if m.pos.distanceTo(m.last.pos) >= minDragDistance {
		m.startDrag()
		return
	}

	if m.phase != phaseTouching || !m.isActive() || !m.last.hasKey {
		return
	}
	if m.now().Sub(m.last.at) >= holdDuration {
		if m.last.key == layout.Toggle {
			// The toggle key has no hold behavior.
			return
		}
		if err := m.keys.KeysDown([]layout.Key{m.last.key}); err != nil {
			m.log.Error("key hold failed", "key", m.last.key, "error", err)
			return
		}
		m.holding = m.last.key
		m.phase = phaseHolding
		m.log.Debug("hold started", "key", m.holding)
	}
}

func (m *Machine) startDrag() {
	if m.phase == phaseHolding {
		// Release the held key before reclassifying; a drag must never
		// leave a key stuck down.
		if err := m.keys.KeysUp([]layout.Key{m.holding}); err != nil {
			m.log.Error("key release failed", "key", m.holding, "error", err)
		}
		m.holding = 0
	}
	if m.isActive() && m.last.hasKey && m.last.key == layout.Toggle {
		// Dragging off the toggle key adjusts the backlight; the grab is
		// kept so the gesture does not also move the pointer. While
		// emulation is off the toggle region is ordinary surface, so the
		// drag falls through to plain pointer motion.
		m.phase = phaseBrightnessDrag
	} else {
		m.ungrab()
		m.phase = phaseDragging
	}
	m.log.Debug("contact reclassified", "phase", m.phase)
}

// adjustBrightness nudges the backlight one step per tick in the direction
// of the drag, saturating at the range bounds. The level is only written
// to the bus when it actually changes.
func (m *Machine) adjustBrightness() {
	m.mu.Lock()
	level := m.brightness
	m.mu.Unlock()

	switch {
	case m.pos.y < m.last.pos.y && level < backlight.MaxBrightness:
		level++
	case m.pos.y > m.last.pos.y && level > 0:
		level--
	default:
		return
	}

	m.mu.Lock()
	m.brightness = level
	m.mu.Unlock()

	if err := m.light.SetBrightness(level); err != nil {
		m.log.Error("brightness write failed", "level", level, "error", err)
	}
}

func (m *Machine) isActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// grab takes exclusive ownership of the touchpad. Failures are logged and
// the machine carries on ungrabbed; a later contact retries naturally.
func (m *Machine) grab() {
	if m.grabbed {
		return
	}
	if err := m.pad.Grab(); err != nil {
		m.log.Warn("touchpad grab failed", "error", err)
		return
	}
	m.grabbed = true
}

func (m *Machine) ungrab() {
	if !m.grabbed {
		return
	}
	if err := m.pad.Ungrab(); err != nil {
		m.log.Warn("touchpad ungrab failed", "error", err)
		return
	}
	m.grabbed = false
}

// Reset returns the machine to the lifted, ungrabbed state after the
// touchpad device has been reopened (suspend or hotplug). Any held key is
// released so nothing stays stuck across the reset.
func (m *Machine) Reset() {
	if m.phase == phaseHolding {
		if err := m.keys.KeysUp([]layout.Key{m.holding}); err != nil {
			m.log.Error("key release failed", "key", m.holding, "error", err)
		}
		m.holding = 0
	}
	m.phase = phaseLifted
	m.grabbed = false
}

// ReapplyLight pushes the current light state back to the controller. The
// backlight chip loses its registers across a suspend, so this runs on
// resume. Safe to call from any goroutine.
func (m *Machine) ReapplyLight() {
	m.mu.Lock()
	active := m.active
	level := m.brightness
	m.mu.Unlock()

	if !active {
		if err := m.light.TurnOff(); err != nil {
			m.log.Error("backlight off failed", "error", err)
		}
		return
	}
	if err := m.light.TurnOn(); err != nil {
		m.log.Error("backlight on failed", "error", err)
	}
	if err := m.light.SetBrightness(level); err != nil {
		m.log.Error("brightness write failed", "level", level, "error", err)
	}
}
