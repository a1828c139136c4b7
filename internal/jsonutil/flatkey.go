// Package jsonutil holds small helpers shared across the metadata-handling
// packages (source, guide, ledger, planner) for reading the flat-dotted-key
// JSON documents defined by spec.md §3 and §6.
package jsonutil

import (
	"strings"

	"github.com/tidwall/gjson"
)

// FlatGet reads a value stored under a literal dotted key such as
// "package.release.default" or "release.depends" (the wire documents use
// flat keys, not nested objects — mirroring the original implementation's
// pkg_info["package.release.default"] dict lookups). gjson treats "." as
// a path separator by default, so dots in the key are escaped before the
// lookup.
func FlatGet(doc gjson.Result, flatKey string) gjson.Result {
	escaped := strings.ReplaceAll(flatKey, ".", `\.`)
	return doc.Get(escaped)
}
