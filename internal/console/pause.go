package console

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// DefaultPrompt matches the original launcher's final prompt.
const DefaultPrompt = "Press any key to continue..."

// ErrCancelled reports that the user dismissed the pause with Ctrl-C
// instead of an ordinary key. Raw mode delivers Ctrl-C as a plain ETX
// byte rather than a signal, so the pause has to recognize it itself.
var ErrCancelled = errors.New("cancelled by user")

// etx is the byte a raw-mode terminal delivers for Ctrl-C.
const etx = 0x03

// Pause prints the prompt and blocks until one byte arrives on in.
//
// When in is a real terminal, it is switched into raw mode for the read
// so any key — not only Enter — dismisses the prompt, matching the
// original launcher's pause behavior. For non-terminal input (pipes,
// redirects, CI) a plain one-byte read is used, and EOF returns
// immediately so scripted invocations never hang.
//
// There is deliberately no timeout: this is a human-operated hold-open,
// and closing the window is the only other way out.
func Pause(in io.Reader, out io.Writer, prompt string) error {
	if prompt == "" {
		prompt = DefaultPrompt
	}
	fmt.Fprint(out, prompt)

	if f, ok := in.(*os.File); ok {
		fd := int(f.Fd())
		if term.IsTerminal(fd) {
			return pauseRaw(f, out, fd)
		}
	}

	return readKey(in, out)
}

// pauseRaw performs the single-key read with the terminal in raw mode,
// restoring the previous state before returning.
func pauseRaw(f *os.File, out io.Writer, fd int) error {
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		// Raw mode unavailable — fall back to a buffered read, which
		// requires Enter but still holds the window open.
		return readKey(f, out)
	}
	defer func() { _ = term.Restore(fd, oldState) }()

	return readKey(f, out)
}

// readKey consumes a single byte, finishes the prompt line, and maps
// Ctrl-C to ErrCancelled. EOF counts as a dismissal.
func readKey(in io.Reader, out io.Writer) error {
	buf := make([]byte, 1)
	n, err := in.Read(buf)
	if err != nil && err != io.EOF {
		return err
	}
	fmt.Fprintln(out)
	if n == 1 && buf[0] == etx {
		return ErrCancelled
	}
	return nil
}
