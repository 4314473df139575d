// ABOUTME: Embeds HTML templates and help documents into the binary using go:embed
// ABOUTME: Provides templateFS and helpDocsFS for loading at runtime

package desk

import "embed"

//go:embed templates/*.html
var templateFS embed.FS

//go:embed docs/help/*.md
var helpDocsFS embed.FS
