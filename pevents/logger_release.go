//go:build !pevents_debug

package pevents

import "github.com/rs/zerolog"

// SetLogger is a no-op in release builds.
// The signature is kept identical to the debug build so callers compile
// unchanged regardless of the build tag.
func SetLogger(l zerolog.Logger) {}

// logDebug is a no-op in release mode; the compiler inlines it away.
func logDebug(msg string, fields map[string]any) {}
