// Package views embeds the HTML templates of the demo UI.
package views

import "embed"

//go:embed layout.html users/*.html
var FS embed.FS
