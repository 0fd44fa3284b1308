// Package assets embeds the stylesheet and scripts served under /assets/.
package assets

import "embed"

//go:embed css js
var AssetsFS embed.FS
