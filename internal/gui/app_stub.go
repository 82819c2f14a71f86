//go:build !cgo || headless

package gui

import "errors"

var ErrNoWindow = errors.New("window mode requires cgo (build with CGO_ENABLED=1 and without the headless tag)")

// Run reports that this build has no window support.
func Run(_ Options) error {
	return ErrNoWindow
}
