package tui

import (
	"time"

	"github.com/matheuskafuri/tradewire/internal/pipeline"
)

type headlinesLoadedMsg struct {
	seq       int
	items     []pipeline.ClassifiedHeadline
	fetchedAt time.Time
}

type headlinesErrMsg struct {
	seq int
	err error
}

// tickMsg fires once per refresh interval.
type tickMsg time.Time

type updateAvailableMsg struct {
	version string
}

type openErrMsg struct {
	err error
}
