// Package render turns markdown model replies into styled terminal
// output.
package render

import "os"

// Options configures the markdown renderer.
type Options struct {
	// Width is the maximum output width in cells
	Width int

	// Style is a glamour style name ("dark", "light", "notty") or a
	// path to a style JSON file
	Style string

	// PreserveNewLines keeps the original line breaks of the reply
	PreserveNewLines bool
}

// DefaultOptions returns the standard rendering configuration. The
// GLAMOUR_STYLE environment variable overrides the style.
func DefaultOptions() Options {
	opts := Options{
		Width:            80,
		Style:            "dark",
		PreserveNewLines: true,
	}
	if style := os.Getenv("GLAMOUR_STYLE"); style != "" {
		opts.Style = style
	}
	return opts
}

// WithWidth returns a copy of the options with the given width.
func (o Options) WithWidth(width int) Options {
	o.Width = width
	return o
}

// WithStyle returns a copy of the options with the given style.
func (o Options) WithStyle(style string) Options {
	o.Style = style
	return o
}
