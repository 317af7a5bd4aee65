// Package device tells an embedded app webview apart from a plain browser.
package device

import "strings"

// Detector reports the rendering context.
type Detector interface {
	IsApp() bool
}

// Static is a fixed answer.
type Static bool

// IsApp returns the fixed answer.
func (s Static) IsApp() bool { return bool(s) }

// UserAgent detects the native app by markers in its User-Agent header.
type UserAgent struct {
	Header  string
	Markers []string
}

// IsApp reports whether any marker occurs in the header, ignoring case.
func (u UserAgent) IsApp() bool {
	ua := strings.ToLower(u.Header)
	for _, m := range u.Markers {
		if m != "" && strings.Contains(ua, strings.ToLower(m)) {
			return true
		}
	}
	return false
}
