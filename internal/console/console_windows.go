//go:build windows

package console

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// cpUTF8 is the UTF-8 code page identifier, the same value the original
// launcher selected with `chcp 65001`.
const cpUTF8 = 65001

var (
	kernel32               = windows.NewLazySystemDLL("kernel32.dll")
	procSetConsoleOutputCP = kernel32.NewProc("SetConsoleOutputCP")
)

// SetupUTF8 switches the console output code page to UTF-8 so non-ASCII
// application names and status text render instead of mojibake on
// localized Windows installs (e.g. GBK consoles).
//
// Callers treat a failure as non-fatal: the build must proceed even when
// the code page cannot be changed (no attached console, restricted
// environment).
func SetupUTF8() error {
	ret, _, err := procSetConsoleOutputCP.Call(uintptr(cpUTF8))
	if ret == 0 {
		return fmt.Errorf("SetConsoleOutputCP(%d) failed: %w", cpUTF8, err)
	}
	return nil
}
