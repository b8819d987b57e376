// Package web carries the embedded dashboard assets: the single page
// frontend and the example portfolio served before any upload.
package web

import (
	"embed"
	"io/fs"
)

//go:embed example.csv
var exampleCSV []byte

//go:embed all:static
var staticFiles embed.FS

// ExampleCSV returns a copy of the bundled example portfolio export.
func ExampleCSV() []byte {
	out := make([]byte, len(exampleCSV))
	copy(out, exampleCSV)
	return out
}

// StaticFS returns the embedded frontend rooted at the static directory.
func StaticFS() (fs.FS, error) {
	return fs.Sub(staticFiles, "static")
}
