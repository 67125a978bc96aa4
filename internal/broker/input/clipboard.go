package input

import "github.com/atotto/clipboard"

// Clipboard abstracts the platform clipboard used by the paste strategy.
type Clipboard interface {
	// Set replaces the clipboard contents with text.
	Set(text string) error
}

// hostClipboard writes through the host platform clipboard.
type hostClipboard struct{}

// NewHostClipboard returns the production Clipboard implementation.
func NewHostClipboard() Clipboard {
	return hostClipboard{}
}

// Set implements Clipboard.
func (hostClipboard) Set(text string) error {
	return clipboard.WriteAll(text)
}
