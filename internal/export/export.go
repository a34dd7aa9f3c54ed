// Package export serves rendered drawings over HTTP.
package export

import (
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/inamate/vecgfx/internal/emit"
)

var extensions = map[string]string{
	"svg":      ".svg",
	"script":   ".fuse",
	"commands": ".json",
}

// ETag is a strong validator derived from the rendered bytes.
func ETag(body string) string {
	sum := blake2b.Sum256([]byte(body))
	return `"` + hex.EncodeToString(sum[:12]) + `"`
}

// Write sends a rendered document. A matching If-None-Match gets a 304, and
// a "download" query parameter turns the response into an attachment.
func Write(w http.ResponseWriter, r *http.Request, format, contentType, body string) {
	etag := ETag(body)
	h := w.Header()
	h.Set("ETag", etag)
	h.Set("Cache-Control", "no-cache")

	if match := r.Header.Get("If-None-Match"); match != "" && etagMatches(match, etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if name := r.URL.Query().Get("download"); name != "" {
		h.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s%s"`, sanitize(name), extension(format)))
	}

	h.Set("Content-Type", contentType)
	h.Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		w.Write([]byte(body))
	}
}

// OptionsFromQuery overrides base with the "unit" and "scaling" query parameters.
func OptionsFromQuery(r *http.Request, base emit.Options) (emit.Options, error) {
	q := r.URL.Query()
	if v := q.Get("unit"); v != "" {
		u, err := emit.ParseSizeUnit(v)
		if err != nil {
			return base, err
		}
		base.Unit = u
	}
	if v := q.Get("scaling"); v != "" {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil || f <= 0 {
			return base, fmt.Errorf("invalid scaling %q", v)
		}
		base.Scaling = float32(f)
	}
	return base, nil
}

func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}

func extension(format string) string {
	if ext, ok := extensions[format]; ok {
		return ext
	}
	return ".txt"
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, name)
}
