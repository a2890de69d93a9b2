// Catalog - Item Catalog Browser
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/catalog

// Package theme resolves and persists the light/dark theme.
//
// Resolution order at startup: stored preference, then the system
// preference, then light. Until a preference is stored, system changes keep
// updating the theme; once the user toggles (or a stored value existed),
// system changes are ignored.
package theme

import (
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tomtom215/catalog/internal/logging"
)

// Theme is "light" or "dark".
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// Parse accepts "light" or "dark" in any case.
func Parse(s string) (Theme, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(Light):
		return Light, true
	case string(Dark):
		return Dark, true
	}
	return "", false
}

// Opposite returns the other theme.
func (t Theme) Opposite() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

// PreferenceStore persists the user's explicit choice.
type PreferenceStore interface {
	// Load reports ok=false when nothing is stored.
	Load() (t Theme, ok bool, err error)
	Save(t Theme) error
}

// SystemSource reports the environment's preferred theme.
type SystemSource interface {
	// Preference reports ok=false when the system preference is unknown.
	Preference() (t Theme, ok bool)
	// Subscribe calls fn on every change until the returned stop is called.
	Subscribe(fn func(Theme)) (stop func())
}

// Applier reflects the theme onto the presentation layer.
type Applier interface {
	Apply(t Theme)
}

// ApplierFunc adapts a function to Applier.
type ApplierFunc func(Theme)

// Apply calls f(t).
func (f ApplierFunc) Apply(t Theme) { f(t) }

// Controller owns the current theme.
type Controller struct {
	store   PreferenceStore
	applier Applier
	logger  zerolog.Logger

	mu       sync.Mutex
	theme    Theme
	explicit bool
	closed   bool
	stop     func()
}

// New resolves the initial theme and applies it. store and system may be
// nil. A failing store is logged and treated as empty.
func New(store PreferenceStore, system SystemSource, applier Applier) *Controller {
	c := &Controller{
		store:   store,
		applier: applier,
		logger:  logging.WithComponent("theme"),
		theme:   Light,
	}

	source := "default"
	if store != nil {
		t, ok, err := store.Load()
		switch {
		case err != nil:
			c.logger.Warn().Err(err).Msg("Failed to read theme preference")
		case ok:
			c.theme, c.explicit, source = t, true, "stored"
		}
	}
	if !c.explicit && system != nil {
		if t, ok := system.Preference(); ok {
			c.theme, source = t, "system"
		}
	}
	c.apply()
	c.logger.Debug().Str("theme", string(c.theme)).Str("source", source).Msg("Theme resolved")

	if !c.explicit && system != nil {
		c.stop = system.Subscribe(c.systemChanged)
	}
	return c
}

// Theme returns the current theme.
func (c *Controller) Theme() Theme {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.theme
}

// Toggle flips the theme, applies it and persists it. The in-memory theme
// changes even when persisting fails; the error is returned.
func (c *Controller) Toggle() error {
	c.mu.Lock()
	c.theme = c.theme.Opposite()
	c.explicit = true
	c.apply()
	t := c.theme
	stop := c.stop
	c.stop = nil
	c.mu.Unlock()

	if stop != nil {
		stop()
	}
	if c.store == nil {
		return nil
	}
	if err := c.store.Save(t); err != nil {
		c.logger.Warn().Err(err).Str("theme", string(t)).Msg("Failed to save theme preference")
		return err
	}
	return nil
}

// Close stops following system changes.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	stop := c.stop
	c.stop = nil
	c.mu.Unlock()
	if stop != nil {
		stop()
	}
}

func (c *Controller) systemChanged(t Theme) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.explicit || c.closed || t == c.theme {
		return
	}
	c.theme = t
	c.apply()
	c.logger.Debug().Str("theme", string(t)).Msg("Theme followed system change")
}

// apply must be called with mu held so applications stay ordered.
func (c *Controller) apply() {
	if c.applier != nil {
		c.applier.Apply(c.theme)
	}
}
