// Package navigation holds the stateful call sites of the redirect policy:
// route guards, the once-per-load entry redirector and the per-navigation
// watcher, composed per tab.
//
// Every component re-reads the SessionStore when it runs and asks
// policy.ResolveRedirect for a decision. None of them caches another
// component's result.
package navigation
