package domain

import "sync"

// Orientation is one of the two fixed states of the companion card.
type Orientation string

const (
	OrientationFront Orientation = "front" // rotateY(0deg)
	OrientationBack  Orientation = "back"  // rotateY(180deg)
)

// Opposite returns the other orientation.
func (o Orientation) Opposite() Orientation {
	if o == OrientationBack {
		return OrientationFront
	}
	return OrientationBack
}

// Card is a companion element that flips in sync with text advances.
// The zero value faces front.
type Card struct {
	mu          sync.RWMutex
	ID          string
	orientation Orientation
	flips       int
}

// NewCard creates a front-facing card.
func NewCard(id string) *Card {
	return &Card{ID: id, orientation: OrientationFront}
}

// Flip toggles the orientation.
func (c *Card) Flip() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.orientation = c.current().Opposite()
	c.flips++
}

// Orientation returns the current orientation.
func (c *Card) Orientation() Orientation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current()
}

// Flips returns how many times the card flipped.
func (c *Card) Flips() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.flips
}

func (c *Card) current() Orientation {
	if c.orientation == "" {
		return OrientationFront
	}
	return c.orientation
}
