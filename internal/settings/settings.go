// Package settings resolves user settings from the page URL, explicit
// choices and defaults, and notifies listeners when one should be re-read.
package settings

import (
	"net/url"
	"strconv"
)

// Recognized keys.
const (
	KeyCapability   = "capability"
	KeyLatLonZ      = "latLonZ"
	KeyMapBaseLayer = "mapBaseLayer"
	KeyMapRotation  = "mapRotation"
)

// Settings is a key/value settings source. It is not safe for concurrent use.
type Settings struct {
	defaults map[string]string
	values   map[string]string
	location func() string
	subs     []*subscriber
}

type subscriber struct {
	fn func(key string)
}

// New creates settings over defaults. location, when non-nil, returns the
// current page URL whose query parameters take precedence.
func New(defaults map[string]string, location func() string) *Settings {
	d := make(map[string]string, len(defaults))
	for k, v := range defaults {
		d[k] = v
	}
	return &Settings{defaults: d, values: map[string]string{}, location: location}
}

// Get returns the value of key: URL query first, then Set values, then
// defaults. Missing keys yield "".
func (s *Settings) Get(key string) string {
	if s.location != nil {
		if u, err := url.Parse(s.location()); err == nil {
			if v := u.Query().Get(key); v != "" {
				return v
			}
		}
	}
	if v, ok := s.values[key]; ok {
		return v
	}
	return s.defaults[key]
}

// Bool parses key as a boolean; unparsable values are false.
func (s *Settings) Bool(key string) bool {
	b, _ := strconv.ParseBool(s.Get(key))
	return b
}

// Set stores a value and notifies listeners.
func (s *Settings) Set(key, value string) {
	s.values[key] = value
	s.CB(key)
}

// CB tells listeners that key should be re-read.
func (s *Settings) CB(key string) {
	for _, sub := range append([]*subscriber(nil), s.subs...) {
		sub.fn(key)
	}
}

// Subscribe registers fn for CB notifications.
func (s *Settings) Subscribe(fn func(key string)) (cancel func()) {
	sub := &subscriber{fn: fn}
	s.subs = append(s.subs, sub)
	return func() {
		for i, existing := range s.subs {
			if existing == sub {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}
