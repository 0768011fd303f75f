//go:build windows

package plugins

import "os"

var forwardedSignals = []os.Signal{os.Interrupt}
