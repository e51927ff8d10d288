// Package web embeds the memory-book page markup.
package web

import "embed"

// FS holds the embedded web directory contents.
//
//go:embed index.html
var FS embed.FS

// IndexPath is the name of the page template inside FS.
const IndexPath = "index.html"
