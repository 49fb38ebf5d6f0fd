// Package stacktrace trims goroutine dumps down to the frames that belong to
// this service.
package stacktrace

import (
	"log/slog"
	"strings"
)

const marker = "/internal/"

// InternalPaths returns the "internal/<pkg>/<file>.go:<line>" locations found
// in a raw stack trace, innermost first.
func InternalPaths(stack []byte) []string {
	var paths []string
	for line := range strings.Lines(string(stack)) {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "/") && !strings.Contains(line, ":/") {
			continue
		}

		idx := strings.Index(line, marker)
		if idx == -1 || !strings.Contains(line, ".go:") {
			continue
		}

		loc := line[idx+1:]
		if sp := strings.IndexByte(loc, ' '); sp != -1 {
			loc = loc[:sp]
		}
		paths = append(paths, loc)
	}
	return paths
}

// Attr returns a "stack" log attribute holding the internal frames, or the
// whole dump when none are found.
func Attr(stack []byte) slog.Attr {
	if paths := InternalPaths(stack); len(paths) > 0 {
		return slog.Any("stack", paths)
	}
	return slog.String("stack", string(stack))
}
