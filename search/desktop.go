package search

import (
	"context"
	"errors"

	"github.com/pkg/browser"
)

// DesktopHost opens URLs in the system's default browser. It cannot see or
// steer existing tabs, so every search opens a new one.
type DesktopHost struct {
	// Open defaults to browser.OpenURL.
	Open func(url string) error
}

func (h DesktopHost) FocusedTab(context.Context) (Tab, error) {
	return Tab{}, nil
}

func (h DesktopHost) Update(context.Context, string, string) error {
	return errors.New("desktop browser tabs cannot be updated in place")
}

func (h DesktopHost) Create(_ context.Context, url string) error {
	open := h.Open
	if open == nil {
		open = browser.OpenURL
	}
	return open(url)
}

// FallbackHost asks Primary for the focused tab and falls back to Secondary
// when Primary has none. Updates always go to Primary since only its tabs
// carry ids; new tabs are opened by Secondary.
type FallbackHost struct {
	Primary   Host
	Secondary Host
}

func (h FallbackHost) FocusedTab(ctx context.Context) (Tab, error) {
	t, err := h.Primary.FocusedTab(ctx)
	if err == nil {
		return t, nil
	}
	return h.Secondary.FocusedTab(ctx)
}

func (h FallbackHost) Update(ctx context.Context, tabID, url string) error {
	return h.Primary.Update(ctx, tabID, url)
}

func (h FallbackHost) Create(ctx context.Context, url string) error {
	return h.Secondary.Create(ctx, url)
}
