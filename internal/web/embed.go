// Package web holds the embedded admin console assets.
package web

import "embed"

//go:embed templates/*.html
var FS embed.FS
