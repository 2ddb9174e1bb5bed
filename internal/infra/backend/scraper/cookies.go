package scraper

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// cookieJar holds the scoped on-disk copy of the credential material the
// extractor needs to avoid bot checks. The material is written once into a
// private temp directory, loaded into the HTTP client, and removed on Close.
// It must never appear in returned records.
type cookieJar struct {
	dir     string
	cookies []*http.Cookie
}

// writeCookieJar materializes raw Netscape-format cookie text into a scoped
// temp file and parses it. Empty input yields a nil jar.
func writeCookieJar(raw string) (*cookieJar, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	dir, err := os.MkdirTemp("", "vv-cookies-*")
	if err != nil {
		return nil, fmt.Errorf("creating cookie dir: %w", err)
	}

	path := filepath.Join(dir, "cookies.txt")
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("writing cookie jar: %w", err)
	}

	return &cookieJar{dir: dir, cookies: parseNetscapeCookies(raw)}, nil
}

// remove deletes the on-disk credential material.
func (j *cookieJar) remove() error {
	if j == nil || j.dir == "" {
		return nil
	}

	return os.RemoveAll(j.dir)
}

// parseNetscapeCookies reads the browser-export cookie format: one cookie
// per line, seven tab-separated fields, comment lines starting with '#'.
// Malformed lines are skipped.
func parseNetscapeCookies(raw string) []*http.Cookie {
	var cookies []*http.Cookie

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) != 7 {
			continue
		}

		cookies = append(cookies, &http.Cookie{
			Domain: fields[0],
			Path:   fields[2],
			Secure: strings.EqualFold(fields[3], "TRUE"),
			Name:   fields[5],
			Value:  fields[6],
		})
	}

	return cookies
}
