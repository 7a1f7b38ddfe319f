// Package console handles terminal concerns for the launcher: switching
// the Windows console output code page to UTF-8 so non-ASCII status text
// renders correctly, and the final blocking "press any key" prompt that
// keeps a double-clicked console window open until the user has read the
// build output.
package console
