package ports

import "context"

// TextStore persists the last settled text of a scrambler,
// so a restarted host can display it before the first transition.
type TextStore interface {
	// SaveText stores text under key, replacing any previous value.
	SaveText(ctx context.Context, key, text string) error

	// LoadText retrieves the text saved under key.
	// Returns domain.ErrTextNotFound if nothing was saved.
	LoadText(ctx context.Context, key string) (string, error)

	// DeleteText removes the text saved under key.
	DeleteText(ctx context.Context, key string) error
}
