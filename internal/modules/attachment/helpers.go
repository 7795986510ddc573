package attachment

import (
	"mime"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// buildFileName generates a collision-resistant storage filename that
// preserves only the validated extension. User input never reaches the disk
// path.
func buildFileName(ext string) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:18] + "." + ext
}

// fileExt returns the lower-cased extension of name without the leading dot.
func fileExt(name string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(strings.TrimSpace(name))), ".")
}

// sanitizeOriginalName reduces a user-supplied filename to a safe metadata
// string: base name only, unsafe runes replaced with underscores.
func sanitizeOriginalName(raw string) string {
	name := filepath.Base(strings.TrimSpace(raw))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "file"
	}
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.' || r == ' ' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	cleaned := strings.TrimSpace(b.String())
	if cleaned == "" || strings.Trim(cleaned, "._ ") == "" {
		return "file"
	}
	return cleaned
}

// detectContentType resolves the MIME type from the file extension, falling
// back to the upload header. Extension wins because multipart clients often
// send a generic octet-stream part type.
func detectContentType(filename, fallback string) string {
	if ext := strings.ToLower(filepath.Ext(strings.TrimSpace(filename))); ext != "" {
		if guessed := mime.TypeByExtension(ext); guessed != "" {
			return guessed
		}
	}
	if ct := strings.TrimSpace(fallback); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// parseRange interprets a single-span "bytes=start-end" header against a file
// of the given size. ok is false for anything malformed, multi-span, or out
// of bounds; callers fall back to serving the whole file. An end past the
// last byte clamps to it.
func parseRange(header string, size int64) (start, end int64, ok bool) {
	header = strings.TrimSpace(header)
	if size <= 0 || !strings.HasPrefix(header, "bytes=") {
		return 0, 0, false
	}
	spec := strings.TrimPrefix(header, "bytes=")
	if strings.Contains(spec, ",") {
		return 0, 0, false
	}
	parts := strings.SplitN(spec, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}

	startStr, endStr := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if startStr == "" {
		// Suffix form: last N bytes.
		n, err := strconv.ParseInt(endStr, 10, 64)
		if err != nil || n <= 0 {
			return 0, 0, false
		}
		if n > size {
			n = size
		}
		return size - n, size - 1, true
	}

	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil || start < 0 || start >= size {
		return 0, 0, false
	}

	end = size - 1
	if endStr != "" {
		end, err = strconv.ParseInt(endStr, 10, 64)
		if err != nil || end < start {
			return 0, 0, false
		}
		if end >= size {
			end = size - 1
		}
	}
	return start, end, true
}
