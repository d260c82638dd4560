// Package preset holds the menu of common display modes and parses mode
// strings such as "2560x1440" or "2560x1440@144".
package preset

import (
	"fmt"
	"strconv"
	"strings"
)

// Resolution is a named menu entry
type Resolution struct {
	Key    string `json:"key"`
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

func (r Resolution) String() string {
	return fmt.Sprintf("%s (%dx%d)", r.Name, r.Width, r.Height)
}

// RefreshRate is a menu entry in Hz
type RefreshRate struct {
	Key string `json:"key"`
	Hz  int    `json:"hz"`
}

var resolutions = [...]Resolution{
	{"1", "720p", 1280, 720},
	{"2", "1080p", 1920, 1080},
	{"3", "1440p", 2560, 1440},
	{"4", "4K", 3840, 2160},
	{"5", "UWQHD", 3440, 1440},
	{"6", "Steam Deck (landscape)", 1280, 800},
	{"7", "Steam Deck (portrait)", 800, 1280},
	{"8", "WUXGA", 1920, 1200},
	{"9", "WQHD", 2560, 1600},
}

var refreshRates = [...]RefreshRate{
	{"1", 60},
	{"2", 75},
	{"3", 90},
	{"4", 120},
	{"5", 144},
	{"6", 165},
	{"7", 240},
}

// Fallbacks used when a menu choice cannot be understood
const (
	DefaultWidth     = 1920
	DefaultHeight    = 1080
	DefaultRefreshHz = 60
)

// Resolutions returns the resolution menu in key order
func Resolutions() []Resolution {
	out := make([]Resolution, len(resolutions))
	copy(out, resolutions[:])
	return out
}

// RefreshRates returns the refresh menu in key order
func RefreshRates() []RefreshRate {
	out := make([]RefreshRate, len(refreshRates))
	copy(out, refreshRates[:])
	return out
}

// LookupResolution finds a resolution by menu key
func LookupResolution(key string) (Resolution, bool) {
	for _, r := range resolutions {
		if r.Key == key {
			return r, true
		}
	}
	return Resolution{}, false
}

// LookupRefreshRate finds a refresh rate by menu key
func LookupRefreshRate(key string) (RefreshRate, bool) {
	for _, r := range refreshRates {
		if r.Key == key {
			return r, true
		}
	}
	return RefreshRate{}, false
}

// ParseResolution parses "WIDTHxHEIGHT"
func ParseResolution(s string) (width, height int, err error) {
	w, h, ok := strings.Cut(strings.TrimSpace(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid resolution format %q, use format like 1920x1080", s)
	}
	width, err = strconv.Atoi(w)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid resolution format %q, use format like 1920x1080", s)
	}
	height, err = strconv.Atoi(h)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid resolution format %q, use format like 1920x1080", s)
	}
	return width, height, nil
}

// ParseMode parses "WIDTHxHEIGHT@HZ"
func ParseMode(s string) (width, height, hz int, err error) {
	res, rate, ok := strings.Cut(strings.TrimSpace(s), "@")
	if !ok {
		return 0, 0, 0, fmt.Errorf("invalid mode %q, use format like 1920x1080@60", s)
	}
	width, height, err = ParseResolution(res)
	if err != nil {
		return 0, 0, 0, err
	}
	hz, err = strconv.Atoi(strings.TrimSuffix(strings.ToLower(rate), "hz"))
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid refresh rate in %q", s)
	}
	return width, height, hz, nil
}
