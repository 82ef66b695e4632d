package search

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"search-launcher/profile"
)

// ErrNavigationUnavailable wraps any failure to obtain or drive a browsing surface.
var ErrNavigationUnavailable = errors.New("navigation unavailable")

// Tab is a browsing surface as seen by the dispatcher.
type Tab struct {
	ID  string
	URL string
}

// Host is the browser environment the dispatcher navigates.
type Host interface {
	// FocusedTab returns the currently focused surface.
	FocusedTab(ctx context.Context) (Tab, error)
	// Update navigates an existing surface in place.
	Update(ctx context.Context, tabID, url string) error
	// Create opens url in a new surface.
	Create(ctx context.Context, url string) error
}

// ProfileStore is the part of profile.Store the dispatcher needs.
type ProfileStore interface {
	Get(id string) (profile.Profile, bool)
	Activate(ctx context.Context, id string) error
}

type Mode string

const (
	ModeUpdated Mode = "updated"
	ModeCreated Mode = "created"
)

// Result describes a completed search. PersistErr is set when the search ran
// but recording the active profile failed. Removed is set when the profile
// was deleted while navigating, so there was nothing left to activate.
type Result struct {
	Profile    profile.Profile `json:"profile"`
	URL        string          `json:"url"`
	Mode       Mode            `json:"mode"`
	TabID      string          `json:"tabId,omitempty"`
	Removed    bool            `json:"removed,omitempty"`
	PersistErr error           `json:"-"`
}

type Dispatcher struct {
	Store   ProfileStore
	Host    Host
	Builder Builder
	// Domain is the site whose tabs are reused; DefaultDomain when empty.
	Domain string
	Log    *zap.Logger
}

func (d *Dispatcher) logger() *zap.Logger {
	if d.Log == nil {
		return zap.NewNop()
	}
	return d.Log
}

// Search opens the profile's search and then marks it active. Navigation
// failures abort before any state change; a persist failure after a
// successful navigation is reported in Result.PersistErr.
func (d *Dispatcher) Search(ctx context.Context, id string) (Result, error) {
	p, ok := d.Store.Get(id)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", profile.ErrNotFound, id)
	}

	res := Result{Profile: p, URL: d.Builder.URL(p.Keywords)}
	log := d.logger().With(zap.String("profile", p.ID))

	tab, err := d.Host.FocusedTab(ctx)
	if err != nil {
		log.Warn("no focused tab", zap.Error(err))
		return Result{}, fmt.Errorf("%w: focused tab: %v", ErrNavigationUnavailable, err)
	}

	domain := d.Domain
	if domain == "" {
		domain = DefaultDomain
	}
	if tab.ID != "" && OnDomain(tab.URL, domain) {
		if err := d.Host.Update(ctx, tab.ID, res.URL); err != nil {
			log.Warn("updating tab failed", zap.String("tab", tab.ID), zap.Error(err))
			return Result{}, fmt.Errorf("%w: update tab: %v", ErrNavigationUnavailable, err)
		}
		res.Mode = ModeUpdated
		res.TabID = tab.ID
	} else {
		if err := d.Host.Create(ctx, res.URL); err != nil {
			log.Warn("opening tab failed", zap.Error(err))
			return Result{}, fmt.Errorf("%w: create tab: %v", ErrNavigationUnavailable, err)
		}
		res.Mode = ModeCreated
	}

	switch err := d.Store.Activate(ctx, p.ID); {
	case errors.Is(err, profile.ErrNotFound):
		log.Warn("profile removed during search, not activated")
		res.Removed = true
	case err != nil:
		log.Error("recording active profile failed", zap.Error(err))
		res.PersistErr = err
	}
	log.Info("search opened", zap.String("mode", string(res.Mode)))
	return res, nil
}
