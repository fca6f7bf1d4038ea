// Package callurl tags video-call links with the client surface that opened them.
package callurl

import (
	"net/url"
	"strings"
)

const (
	// Param is the query parameter the video-call service reads to identify the client surface.
	Param = "videocallUser"

	// DefaultMarker is the surface value appended when none is configured.
	DefaultMarker = "mobile"
)

// Augmenter appends the surface marker to video-call URLs.
type Augmenter struct {
	marker string
}

// New returns an Augmenter for marker. An empty marker uses DefaultMarker.
func New(marker string) Augmenter {
	marker = strings.TrimSpace(marker)
	if marker == "" {
		marker = DefaultMarker
	}
	return Augmenter{marker: marker}
}

// Marker reports the value written for Param.
func (a Augmenter) Marker() string {
	if a.marker == "" {
		return DefaultMarker
	}
	return a.marker
}

// Augment returns raw with Param appended. Empty input and URLs whose query
// already carries Param are returned unchanged.
func (a Augmenter) Augment(raw string) string {
	if raw == "" {
		return raw
	}

	base, fragment, hasFragment := strings.Cut(raw, "#")
	_, query, hasQuery := strings.Cut(base, "?")
	if hasQuery && hasParam(query) {
		return raw
	}

	sep := "?"
	switch {
	case strings.HasSuffix(base, "?"), strings.HasSuffix(base, "&"):
		sep = ""
	case hasQuery:
		sep = "&"
	}

	out := base + sep + Param + "=" + url.QueryEscape(a.Marker())
	if hasFragment {
		out += "#" + fragment
	}
	return out
}

func hasParam(query string) bool {
	for _, part := range strings.Split(query, "&") {
		key, _, _ := strings.Cut(part, "=")
		if key == Param {
			return true
		}
	}
	return false
}
