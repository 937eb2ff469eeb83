package ports

import "context"

// NavigationMode selects how the host router moves the user.
type NavigationMode int

const (
	// NavigateReplace is an in-app navigation that replaces the history entry.
	NavigateReplace NavigationMode = iota
	// NavigateReload is a full page load. Reserved for logout.
	NavigateReload
)

func (m NavigationMode) String() string {
	if m == NavigateReload {
		return "reload"
	}
	return "replace"
}

// Navigator is the host router as seen by the engine.
type Navigator interface {
	Navigate(ctx context.Context, target string, mode NavigationMode) error
}
