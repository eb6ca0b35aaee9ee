// Package web holds the dashboard templates and assets.
package web

import "embed"

// Templates holds the html templates under templates/.
//
//go:embed templates
var Templates embed.FS

// Static holds the stylesheet served under /static.
//
//go:embed static
var Static embed.FS
