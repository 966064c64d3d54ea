//go:build !linux

package statusled

import "fmt"

// Stub implementation for non-Linux platforms.
func openLine(pin int) (lineDriver, error) {
	return nil, fmt.Errorf("statusled: gpio unsupported on this platform")
}
