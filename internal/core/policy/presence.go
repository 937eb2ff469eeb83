package policy

import "github.com/lyvo/session-gateway/internal/core/domain"

// ShouldShowSharedShell reports whether the shared top nav, footer and chat
// render on path. Role areas bring their own chrome.
func ShouldShowSharedShell(path string) bool {
	return domain.AreaOf(path) == domain.AreaAnonymous
}
