// Package touchpad finds and reads the physical touchpad device.
//
// Discovery walks /proc/bus/input/devices, which the kernel formats as
// blocks of tagged lines per device. The touchpad block is identified by
// its name line; the I2C bus number and the event node number are then
// pulled out of the sysfs and handler lines of the same block.
package touchpad

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

const procInputDevices = "/proc/bus/input/devices"

// Fragments that must both appear in the device name line. The backlit
// numpad touchpads all report a name like "ASUF1204:00 2808:0218 Touchpad".
var nameFragments = []string{"ASUF", "Touchpad"}

// Discovery errors. All of them are fatal at startup: without the device
// there is nothing to do.
var (
	ErrTouchpadNotFound = errors.New("touchpad: no matching device in listing")
	ErrNoI2CBus         = errors.New("touchpad: device block has no i2c bus")
	ErrNoEventNode      = errors.New("touchpad: device block has no event node")
)

// ID locates the touchpad on both of its buses: the I2C bus shared with
// the backlight controller, and the input event node.
type ID struct {
	I2CBus    int
	EventNode int
}

// EventPath returns the /dev/input node for the touchpad's event stream.
func (id ID) EventPath() string {
	return fmt.Sprintf("/dev/input/event%d", id.EventNode)
}

// Discover scans the system device listing for the touchpad.
func Discover() (ID, error) {
	f, err := os.Open(procInputDevices)
	if err != nil {
		return ID{}, fmt.Errorf("touchpad: open %s: %w", procInputDevices, err)
	}
	defer f.Close()
	return parseDevices(f)
}

func parseDevices(r io.Reader) (ID, error) {
	var (
		id      ID
		inBlock bool
		haveBus bool
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()

		if !inBlock {
			inBlock = isTouchpadName(line)
			continue
		}

		switch {
		case strings.HasPrefix(line, "S:"):
			bus, ok := numberAfter(line, "i2c-")
			if !ok {
				return ID{}, ErrNoI2CBus
			}
			id.I2CBus = bus
			haveBus = true
		case strings.HasPrefix(line, "H:"):
			node, ok := numberAfter(line, "event")
			if !ok {
				return ID{}, ErrNoEventNode
			}
			id.EventNode = node
			// The handler line follows the sysfs line, so the block is
			// fully parsed here.
			if !haveBus {
				return ID{}, ErrNoI2CBus
			}
			return id, nil
		case line == "":
			// Block ended early; report the first missing field.
			if !haveBus {
				return ID{}, ErrNoI2CBus
			}
			return ID{}, ErrNoEventNode
		}
	}
	if err := scanner.Err(); err != nil {
		return ID{}, fmt.Errorf("touchpad: read listing: %w", err)
	}
	if inBlock {
		if !haveBus {
			return ID{}, ErrNoI2CBus
		}
		return ID{}, ErrNoEventNode
	}
	return ID{}, ErrTouchpadNotFound
}

func isTouchpadName(line string) bool {
	if !strings.HasPrefix(line, "N:") {
		return false
	}
	for _, frag := range nameFragments {
		if !strings.Contains(line, frag) {
			return false
		}
	}
	return true
}

// numberAfter extracts the decimal number immediately following the first
// occurrence of marker in line.
func numberAfter(line, marker string) (int, bool) {
	_, rest, found := strings.Cut(line, marker)
	if !found {
		return 0, false
	}
	end := 0
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(rest[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
