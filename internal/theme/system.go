// Catalog - Item Catalog Browser
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/catalog

package theme

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/muesli/termenv"
)

// TerminalSource derives the system theme from the terminal background.
//
// COLORFGBG is consulted first since it is cheap and set by many
// terminals; otherwise the terminal is queried through termenv. Output
// without color support reports no preference.
type TerminalSource struct {
	out      *termenv.Output
	interval time.Duration
	getenv   func(string) string
}

// NewTerminalSource inspects out. interval > 0 enables polling for changes;
// leave it zero while another component owns the terminal's input, since
// each poll may issue an OSC background query.
func NewTerminalSource(out *termenv.Output, interval time.Duration) *TerminalSource {
	return &TerminalSource{out: out, interval: interval, getenv: os.Getenv}
}

// Preference implements SystemSource.
func (s *TerminalSource) Preference() (Theme, bool) {
	if t, ok := parseColorFGBG(s.getenv("COLORFGBG")); ok {
		return t, true
	}
	if s.out == nil || s.out.Profile == termenv.Ascii {
		return "", false
	}
	if s.out.HasDarkBackground() {
		return Dark, true
	}
	return Light, true
}

// Subscribe polls Preference every interval and reports changes. With a
// zero interval it never calls fn.
func (s *TerminalSource) Subscribe(fn func(Theme)) func() {
	if s.interval <= 0 {
		return func() {}
	}

	done := make(chan struct{})
	var once sync.Once
	last, _ := s.Preference()
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				t, ok := s.Preference()
				if ok && t != last {
					last = t
					fn(t)
				}
			}
		}
	}()
	return func() { once.Do(func() { close(done) }) }
}

// parseColorFGBG reads "fg;bg" (or "fg;default;bg"). Background indexes
// 0-6 and 8 are dark in the standard 16-color palette.
func parseColorFGBG(v string) (Theme, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", false
	}
	parts := strings.Split(v, ";")
	bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1]))
	if err != nil || bg < 0 || bg > 15 {
		return "", false
	}
	if bg <= 6 || bg == 8 {
		return Dark, true
	}
	return Light, true
}
