package domain

import (
	"net/url"
	"regexp"
	"strings"
)

// playlistIDPattern matches the identifier the platform uses for playlists.
var playlistIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{2,}$`)

// ParsePlaylistID extracts the canonical playlist identifier from a
// user-supplied URL or bare identifier. The result is canonical: whitespace
// trimmed, tracking parameters stripped, so the same playlist always maps to
// the same key for caching and dedup.
func ParsePlaylistID(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", &ValidationError{Reason: "empty playlist URL"}
	}

	// Bare identifier, no URL wrapping.
	if !strings.Contains(s, "/") && !strings.Contains(s, "=") {
		if playlistIDPattern.MatchString(s) {
			return s, nil
		}
		return "", &ValidationError{Reason: "malformed playlist identifier"}
	}

	u, err := url.Parse(s)
	if err != nil {
		return "", &ValidationError{Reason: "unparseable playlist URL"}
	}

	id := strings.TrimSpace(u.Query().Get("list"))
	if id == "" || !playlistIDPattern.MatchString(id) {
		return "", &ValidationError{Reason: "no playlist identifier in URL"}
	}

	return id, nil
}

// PlaylistURL rebuilds the canonical watch URL for a playlist identifier.
func PlaylistURL(id string) string {
	return "https://www.youtube.com/playlist?list=" + url.QueryEscape(id)
}
