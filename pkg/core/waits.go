package core

import "time"

// ScrollDirection is the direction of a scroll gesture.
type ScrollDirection string

// Scroll directions.
const (
	ScrollUp    ScrollDirection = "up"
	ScrollDown  ScrollDirection = "down"
	ScrollLeft  ScrollDirection = "left"
	ScrollRight ScrollDirection = "right"
)

// Wait and scroll defaults shared by verifiers and UI waits.
const (
	// DefaultEventTimeout bounds a single event expectation.
	DefaultEventTimeout = 20 * time.Second

	// DefaultPollInterval is the sleep between poll attempts.
	DefaultPollInterval = 500 * time.Millisecond

	// DefaultScrollCount is the number of scroll retries (attempts = count + 1).
	DefaultScrollCount = 0

	// DefaultScrollCapacity is the scroll gesture size, 0..1 of the screen.
	DefaultScrollCapacity = 0.7

	// DefaultScrollDirection is the scroll direction for retry gestures.
	DefaultScrollDirection = ScrollDown
)
