// Package middleware wraps text stores with cross-cutting behavior.
package middleware

import "github.com/aretw0/scramble/pkg/ports"

// Middleware allows wrapping a TextStore to add behavior.
type Middleware func(ports.TextStore) ports.TextStore

// Chain applies middlewares so that the first one is the outermost.
func Chain(store ports.TextStore, mws ...Middleware) ports.TextStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
