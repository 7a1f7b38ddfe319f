//go:build !windows

package console

// SetupUTF8 configures the console for UTF-8 output.
//
// On non-Windows platforms terminals are UTF-8 already, so this is a
// no-op. The return value exists to keep the call site uniform; setup
// failure is never fatal anywhere.
func SetupUTF8() error {
	return nil
}
